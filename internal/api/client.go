// Package api is the HTTP client for the news REST service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"newsboard/internal/models"
)

// ErrBadStatus is the one error surfaced for any non-2xx response.
// Callers are not expected to distinguish status codes.
var ErrBadStatus = errors.New("news api request failed")

// Client issues JSON requests against the news service at BaseURL.
type Client struct {
	BaseURL string
	httpc   *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		httpc:   http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", ErrBadStatus, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) News(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	err := c.do(ctx, http.MethodGet, "/news", nil, &items)
	return items, err
}

func (c *Client) NewsItem(ctx context.Context, id int64) (models.NewsItem, error) {
	var item models.NewsItem
	err := c.do(ctx, http.MethodGet, "/news/"+strconv.FormatInt(id, 10), nil, &item)
	return item, err
}

func (c *Client) CreateNews(ctx context.Context, item models.NewsItem) (models.NewsItem, error) {
	var created models.NewsItem
	err := c.do(ctx, http.MethodPost, "/news", item, &created)
	return created, err
}

func (c *Client) UpdateNews(ctx context.Context, id int64, patch models.NewsPatch) (models.NewsItem, error) {
	var updated models.NewsItem
	err := c.do(ctx, http.MethodPatch, "/news/"+strconv.FormatInt(id, 10), patch, &updated)
	return updated, err
}

func (c *Client) DeleteNews(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/news/"+strconv.FormatInt(id, 10), nil, nil)
}
