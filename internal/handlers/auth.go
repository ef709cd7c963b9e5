package handlers

import (
	"net/http"

	"newsboard/internal/api"
	"newsboard/internal/session"
	"newsboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	api *api.Client
}

func NewAuthHandler(client *api.Client) *AuthHandler {
	return &AuthHandler{api: client}
}

// ShowLogin lists the user directory to pick an identity from.
// There are no credentials; login is identity selection only.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	users, err := h.api.Users(c.Request.Context())
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	data := gin.H{"Users": users, "Title": "Login"}
	if c.Query("reason") == "login_required" {
		data["Warning"] = "Please login first"
	}
	Render(c, http.StatusOK, "auth/login.html", data)
}

func (h *AuthHandler) Login(c *gin.Context) {
	uid := utils.StringToInt64(c.PostForm("user_id"))

	users, err := h.api.Users(c.Request.Context())
	if err != nil {
		RenderError(c, http.StatusBadGateway, "Network error")
		return
	}

	for _, user := range users {
		if user.ID == uid {
			if err := session.Save(c, user); err != nil {
				RenderError(c, http.StatusInternalServerError, "Failed to save session")
				return
			}
			c.Redirect(http.StatusFound, "/news")
			return
		}
	}

	Render(c, http.StatusBadRequest, "auth/login.html", gin.H{
		"Users": users,
		"Title": "Login",
		"Error": "Select a user",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}
