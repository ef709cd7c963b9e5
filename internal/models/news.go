package models

// NewsItem is a board entry. Comments ride inside the item as one ordered
// sequence and are replaced wholesale on update, mirroring the wire shape
// of the news API.
type NewsItem struct {
	ID       int64       `gorm:"primaryKey" json:"id"`
	Title    string      `gorm:"not null" json:"title"`
	Body     string      `gorm:"type:text" json:"body"`
	AuthorID int64       `gorm:"index" json:"author_id"`
	Comments CommentList `gorm:"type:jsonb;default:'[]'" json:"comments"`
}

// NewsPatch carries a partial update. A nil field means "leave as is";
// only the fields present end up in the PATCH body and in the UPDATE.
type NewsPatch struct {
	Title    *string      `json:"title,omitempty"`
	Body     *string      `json:"body,omitempty"`
	Comments *CommentList `json:"comments,omitempty"`
}
