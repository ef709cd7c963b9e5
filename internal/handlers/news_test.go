package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"newsboard/internal/api"
	"newsboard/internal/models"
	"newsboard/internal/newsapi"
	"newsboard/internal/router"
	"newsboard/internal/storage"
	"newsboard/internal/storage/memdb"
	"newsboard/internal/utils"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog records every request the UI issues against the news service.
type requestLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *requestLog) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		l.entries = append(l.entries, r.Method+" "+r.URL.Path)
		l.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (l *requestLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

type testApp struct {
	db         *memdb.MemDB
	backendLog *requestLog
	ui         *httptest.Server
}

// newTestApp runs the real UI engine against the real news API served
// from the in-memory store.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memdb.New()
	backendLog := &requestLog{}
	backend := httptest.NewServer(backendLog.wrap(newsapi.New(db, zap.NewNop())))
	t.Cleanup(backend.Close)

	engine := router.New(
		api.New(backend.URL),
		"../../web/templates",
		"../../web/static",
		cookie.NewStore([]byte("test_secret")),
	)
	ui := httptest.NewServer(engine)
	t.Cleanup(ui.Close)

	// the user directory is memoized process-wide, reset it per app
	utils.GetCache().Delete("users:directory")

	return &testApp{db: db, backendLog: backendLog, ui: ui}
}

func (a *testApp) seedItem(t *testing.T, authorID int64) models.NewsItem {
	t.Helper()
	item := models.NewsItem{
		Title:    "First post",
		Body:     "a body of at least twenty characters",
		AuthorID: authorID,
		Comments: models.CommentList{},
	}
	if err := a.db.AddNews(context.Background(), &item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func (a *testApp) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// noRedirect stops following redirects so Location can be asserted.
func noRedirect(c *http.Client) *http.Client {
	return &http.Client{
		Jar:           c.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func (a *testApp) login(t *testing.T, c *http.Client, userID int64) {
	t.Helper()
	resp, err := c.PostForm(a.ui.URL+"/login", url.Values{"user_id": {strconv.FormatInt(userID, 10)}})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login ended with status %d", resp.StatusCode)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestUnknownRouteFallsBackToList(t *testing.T) {
	app := newTestApp(t)
	c := noRedirect(app.browser(t))

	for _, path := range []string{"/definitely-not-a-route", "/detail", "/news/extra/deep"} {
		resp, err := c.Get(app.ui.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Errorf("%s: expected redirect, got %d", path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/news" {
			t.Errorf("%s: expected /news, got %s", path, loc)
		}
	}
}

func TestAnonymousCreateRedirectsToLoginWithWarning(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)

	resp, err := noRedirect(c).Get(app.ui.URL + "/create")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc != "/login?reason=login_required" {
		t.Fatalf("expected login redirect with warning, got %s", loc)
	}

	resp, err = c.Get(app.ui.URL + loc)
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Please login first") {
		t.Error("login page is missing the warning")
	}
}

func TestCreateValidationNeverReachesTheAPI(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.login(t, c, 1)

	before := len(app.backendLog.snapshot())

	cases := []struct {
		name    string
		title   string
		body    string
		message string
	}{
		{"empty title", "", "a body of at least twenty characters", "Title cannot be empty"},
		{"whitespace title", "   ", "a body of at least twenty characters", "Title cannot be empty"},
		{"short body", "Hello", "too short", "Body must be at least 20 characters"},
	}

	for _, tc := range cases {
		resp, err := c.PostForm(app.ui.URL+"/create", url.Values{"title": {tc.title}, "body": {tc.body}})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
		if !strings.Contains(body, tc.message) {
			t.Errorf("%s: error message %q not rendered", tc.name, tc.message)
		}
	}

	for _, entry := range app.backendLog.snapshot()[before:] {
		if entry == "POST /news" {
			t.Error("a failed validation still reached the news service")
		}
	}
}

func TestAnonymousSeesNoCommentForm(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)

	resp, err := app.browser(t).Get(app.ui.URL + "/detail/" + strconv.FormatInt(item.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Please login to comment.") {
		t.Error("expected the static login notice")
	}
	if strings.Contains(body, "/comment") {
		t.Error("comment form rendered for an anonymous visitor")
	}
}

func TestNonAuthorEditRedirectsToList(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)

	c := app.browser(t)
	app.login(t, c, 2)

	resp, err := noRedirect(c).Get(app.ui.URL + "/edit/" + strconv.FormatInt(item.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/news" {
		t.Errorf("expected /news, got %s", loc)
	}
	if strings.Contains(body, "<form") {
		t.Error("edit form rendered for a non-author")
	}
}

func TestCreateFlowEndToEnd(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	app.login(t, c, 1)

	resp, err := c.PostForm(app.ui.URL+"/create", url.Values{
		"title": {"Hello"},
		"body":  {"exactly twenty-five chars"},
	})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the list view after create, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Hello") {
		t.Error("created item missing from the list")
	}
	if !strings.Contains(body, "by Alice") {
		t.Error("item not attributed to user 1")
	}
	if !strings.Contains(body, "0 comments") {
		t.Error("expected a fresh item with 0 comments")
	}
}

func TestCommentFlowEndToEnd(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)
	id := strconv.FormatInt(item.ID, 10)

	c := app.browser(t)
	app.login(t, c, 2)

	resp, err := c.PostForm(app.ui.URL+"/detail/"+id+"/comment", url.Values{"text": {"Nice!"}})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the detail view after commenting, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Comments (1)") {
		t.Error("comment count did not increment")
	}
	if !strings.Contains(body, "Nice!") {
		t.Error("new comment not rendered")
	}
	if !strings.Contains(body, "Bob") {
		t.Error("comment not attributed to user 2")
	}

	// the sequence is append-only and went back in one patch
	stored, err := app.db.NewsItem(context.Background(), item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Comments) != 1 || stored.Comments[0].UserID != 2 {
		t.Errorf("unexpected stored comments: %+v", stored.Comments)
	}
	if stored.Comments[0].ID == 0 {
		t.Error("expected a client-generated comment id")
	}
}

func TestEmptyCommentIsRejectedInline(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)
	id := strconv.FormatInt(item.ID, 10)

	c := app.browser(t)
	app.login(t, c, 2)

	resp, err := c.PostForm(app.ui.URL+"/detail/"+id+"/comment", url.Values{"text": {"   "}})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Comment cannot be empty") {
		t.Error("inline comment error not rendered")
	}

	stored, err := app.db.NewsItem(context.Background(), item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Comments) != 0 {
		t.Errorf("empty comment was persisted: %+v", stored.Comments)
	}
}

func TestDeleteRemovesWithoutListRefetch(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)
	id := strconv.FormatInt(item.ID, 10)

	c := app.browser(t)
	app.login(t, c, 1)

	before := len(app.backendLog.snapshot())

	req, err := http.NewRequest(http.MethodDelete, app.ui.URL+"/news/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	after := app.backendLog.snapshot()[before:]
	var sawDelete bool
	for _, entry := range after {
		if entry == "DELETE /news/"+id {
			sawDelete = true
		}
		if entry == "GET /news" {
			t.Error("delete triggered a list refetch")
		}
	}
	if !sawDelete {
		t.Error("delete never reached the news service")
	}

	if _, err := app.db.NewsItem(context.Background(), item.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("item still stored after delete: %v", err)
	}
}

func TestDeleteByNonAuthorIsForbidden(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)
	id := strconv.FormatInt(item.ID, 10)

	c := app.browser(t)
	app.login(t, c, 2)

	req, err := http.NewRequest(http.MethodDelete, app.ui.URL+"/news/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}

	if _, err := app.db.NewsItem(context.Background(), item.ID); err != nil {
		t.Errorf("item should survive a non-author delete: %v", err)
	}
}

func TestEditFlowEndToEnd(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)
	id := strconv.FormatInt(item.ID, 10)

	c := app.browser(t)
	app.login(t, c, 1)

	// the form comes pre-filled
	resp, err := c.Get(app.ui.URL + "/edit/" + id)
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "First post") {
		t.Error("edit form not pre-filled with the current title")
	}

	resp, err = c.PostForm(app.ui.URL+"/edit/"+id, url.Values{
		"title": {"Retitled"},
		"body":  {"a rewritten body with plenty of characters"},
	})
	if err != nil {
		t.Fatal(err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "Retitled") {
		t.Error("list view missing the updated title")
	}

	stored, err := app.db.NewsItem(context.Background(), item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != "Retitled" {
		t.Errorf("title not persisted: %s", stored.Title)
	}
	if stored.AuthorID != 1 {
		t.Errorf("author changed by edit: %d", stored.AuthorID)
	}
}

func TestAuthorActionsOnlyForAuthor(t *testing.T) {
	app := newTestApp(t)
	item := app.seedItem(t, 1)
	id := strconv.FormatInt(item.ID, 10)

	// anonymous: no edit/delete controls
	resp, err := app.browser(t).Get(app.ui.URL + "/news")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if strings.Contains(body, "/edit/"+id) || strings.Contains(body, "delete-news") {
		t.Error("author-only actions rendered for anonymous visitor")
	}

	// the author sees both
	c := app.browser(t)
	app.login(t, c, 1)
	resp, err = c.Get(app.ui.URL + "/news")
	if err != nil {
		t.Fatal(err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "/edit/"+id) || !strings.Contains(body, "delete-news") {
		t.Error("author is missing the edit/delete actions")
	}
}
