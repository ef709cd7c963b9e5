package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"newsboard/internal/api"
	"newsboard/internal/middleware"
	"newsboard/internal/models"
	"newsboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const usersCacheKey = "users:directory"

type NewsHandler struct {
	api *api.Client
}

func NewNewsHandler(client *api.Client) *NewsHandler {
	return &NewsHandler{api: client}
}

// usersByID returns the user directory keyed by id. Users are immutable
// from this side, so the directory is memoized for a minute.
func (h *NewsHandler) usersByID(c *gin.Context) (map[int64]models.User, error) {
	if cached := utils.GetCache().Get(usersCacheKey); cached != nil {
		if dir, ok := cached.(map[int64]models.User); ok {
			return dir, nil
		}
	}

	users, err := h.api.Users(c.Request.Context())
	if err != nil {
		return nil, err
	}

	dir := make(map[int64]models.User, len(users))
	for _, user := range users {
		dir[user.ID] = user
	}
	utils.GetCache().Set(usersCacheKey, dir, time.Minute)
	return dir, nil
}

func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		return nil, false
	}
	return v.(*models.User), true
}

// newsRow is a list entry enriched with display fields.
type newsRow struct {
	models.NewsItem
	AuthorName   string
	Excerpt      string
	CommentCount int
	Mine         bool
}

func (h *NewsHandler) List(c *gin.Context) {
	items, err := h.api.News(c.Request.Context())
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}
	usersByID, err := h.usersByID(c)
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	user, loggedIn := currentUser(c)

	rows := make([]newsRow, len(items))
	for i, item := range items {
		authorName := "Unknown"
		if author, ok := usersByID[item.AuthorID]; ok {
			authorName = author.Name
		}
		rows[i] = newsRow{
			NewsItem:     item,
			AuthorName:   authorName,
			Excerpt:      utils.Excerpt(item.Body, 140),
			CommentCount: len(item.Comments),
			Mine:         loggedIn && user.ID == item.AuthorID,
		}
	}

	Render(c, http.StatusOK, "news/list.html", gin.H{
		"Title": "News",
		"Rows":  rows,
	})
}

func (h *NewsHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "news/create.html", gin.H{"Title": "Create News"})
}

// validateNews checks the shared create/edit rules. An empty result
// string means the input passed.
func validateNews(title, body string) string {
	if title == "" {
		return "Title cannot be empty"
	}
	if len([]rune(body)) < 20 {
		return "Body must be at least 20 characters"
	}
	return ""
}

func (h *NewsHandler) Create(c *gin.Context) {
	user, _ := currentUser(c)

	title := strings.TrimSpace(c.PostForm("title"))
	body := strings.TrimSpace(c.PostForm("body"))

	// Validation happens before any call to the news service.
	if msg := validateNews(title, body); msg != "" {
		Render(c, http.StatusBadRequest, "news/create.html", gin.H{
			"Title": "Create News",
			"Error": msg,
			"Form":  gin.H{"Title": title, "Body": body},
		})
		return
	}

	item := models.NewsItem{
		Title:    title,
		Body:     body,
		AuthorID: user.ID,
		Comments: models.CommentList{},
	}
	if _, err := h.api.CreateNews(c.Request.Context(), item); err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	c.Redirect(http.StatusFound, "/news")
}

// commentView is a comment enriched with display fields.
type commentView struct {
	models.Comment
	UserName string
	HTML     template.HTML
	Floor    int
}

func (h *NewsHandler) Detail(c *gin.Context) {
	h.renderDetail(c, http.StatusOK, "", "")
}

func (h *NewsHandler) renderDetail(c *gin.Context, code int, commentError, commentText string) {
	id := utils.StringToInt64(c.Param("id"))

	item, err := h.api.NewsItem(c.Request.Context(), id)
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}
	usersByID, err := h.usersByID(c)
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	authorName := "Unknown"
	if author, ok := usersByID[item.AuthorID]; ok {
		authorName = author.Name
	}

	comments := make([]commentView, len(item.Comments))
	for i, com := range item.Comments {
		userName := "User"
		if u, ok := usersByID[com.UserID]; ok {
			userName = u.Name
		}
		comments[i] = commentView{
			Comment:  com,
			UserName: userName,
			HTML:     utils.RenderMarkdown(com.Text),
			Floor:    i + 1,
		}
	}

	Render(c, code, "news/detail.html", gin.H{
		"Title":        item.Title,
		"Item":         item,
		"AuthorName":   authorName,
		"BodyHTML":     utils.RenderMarkdown(item.Body),
		"Comments":     comments,
		"CommentError": commentError,
		"CommentText":  commentText,
	})
}

func (h *NewsHandler) CreateComment(c *gin.Context) {
	user, _ := currentUser(c)
	id := utils.StringToInt64(c.Param("id"))

	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		h.renderDetail(c, http.StatusBadRequest, "Comment cannot be empty", "")
		return
	}

	item, err := h.api.NewsItem(c.Request.Context(), id)
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	// The id is client-generated from the current time, per the wire
	// contract. Whole sequence goes back in one patch.
	comment := models.Comment{
		ID:     time.Now().UnixMilli(),
		UserID: user.ID,
		Text:   text,
	}
	updated := append(item.Comments, comment)
	patch := models.NewsPatch{Comments: &updated}

	if _, err := h.api.UpdateNews(c.Request.Context(), id, patch); err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	// Full refetch rather than an in-place update.
	c.Redirect(http.StatusFound, "/detail/"+c.Param("id"))
}

func (h *NewsHandler) ShowEdit(c *gin.Context) {
	user, _ := currentUser(c)
	id := utils.StringToInt64(c.Param("id"))

	item, err := h.api.NewsItem(c.Request.Context(), id)
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	// Non-authors never see the edit form.
	if item.AuthorID != user.ID {
		c.Redirect(http.StatusFound, "/news")
		return
	}

	Render(c, http.StatusOK, "news/edit.html", gin.H{
		"Title": "Edit News",
		"Item":  item,
		"Form":  gin.H{"Title": item.Title, "Body": item.Body},
	})
}

func (h *NewsHandler) Update(c *gin.Context) {
	user, _ := currentUser(c)
	id := utils.StringToInt64(c.Param("id"))

	item, err := h.api.NewsItem(c.Request.Context(), id)
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	if item.AuthorID != user.ID {
		c.Redirect(http.StatusFound, "/news")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	body := strings.TrimSpace(c.PostForm("body"))

	if msg := validateNews(title, body); msg != "" {
		Render(c, http.StatusBadRequest, "news/edit.html", gin.H{
			"Title": "Edit News",
			"Item":  item,
			"Error": msg,
			"Form":  gin.H{"Title": title, "Body": body},
		})
		return
	}

	patch := models.NewsPatch{Title: &title, Body: &body}
	if _, err := h.api.UpdateNews(c.Request.Context(), id, patch); err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	c.Redirect(http.StatusFound, "/news")
}

// Delete handles the row-removal delete issued from the list view.
// The caller removes the row itself, no refetch follows.
func (h *NewsHandler) Delete(c *gin.Context) {
	user, _ := currentUser(c)
	id := utils.StringToInt64(c.Param("id"))

	item, err := h.api.NewsItem(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}

	if item.AuthorID != user.ID {
		c.Status(http.StatusForbidden)
		return
	}

	if err := h.api.DeleteNews(c.Request.Context(), id); err != nil {
		c.Status(http.StatusBadGateway)
		return
	}
	c.Status(http.StatusOK)
}
