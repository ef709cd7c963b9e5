package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Comment is appended to a NewsItem's comment sequence and never edited
// or deleted afterwards. The id is assigned by the client from the
// current time in milliseconds.
type Comment struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// CommentList is the ordered comment sequence of a NewsItem. It is stored
// as a single jsonb column, so order is whatever the client sent.
type CommentList []Comment

func (l CommentList) Value() (driver.Value, error) {
	if l == nil {
		l = CommentList{}
	}
	return json.Marshal(l)
}

func (l *CommentList) Scan(value interface{}) error {
	if value == nil {
		*l = CommentList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported comment list column type %T", value)
	}
	return json.Unmarshal(b, l)
}
