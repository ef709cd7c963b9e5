// Package session keeps the logged-in user snapshot in the cookie session.
package session

import (
	"encoding/json"

	"newsboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const userKey = "logged_in_user"

// Save persists the picked user. Written on login only.
func Save(c *gin.Context, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s := sessions.Default(c)
	s.Set(userKey, string(b))
	return s.Save()
}

// Current returns the stored user snapshot. A missing or corrupt value
// reads as "not logged in", never as an error.
func Current(c *gin.Context) (models.User, bool) {
	s := sessions.Default(c)
	raw, ok := s.Get(userKey).(string)
	if !ok {
		return models.User{}, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 {
		return models.User{}, false
	}
	return user, true
}

// Clear drops the session on logout.
func Clear(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	_ = s.Save()
}
