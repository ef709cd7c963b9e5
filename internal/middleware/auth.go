package middleware

import (
	"net/http"

	"newsboard/internal/session"

	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser reads the session snapshot and sets the user on the context.
// Runs on every request so the header chrome always reflects it.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := session.Current(c); ok {
			c.Set(CheckUserKey, &user)
		}
		c.Next()
	}
}

// AuthRequired bounces anonymous visitors to the login view with a
// warning. Authorship checks stay inside the handlers.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login?reason=login_required")
			c.Abort()
			return
		}
		c.Next()
	}
}
