package models

// User is a member of the board. Users are seeded by the news API and
// never created or edited from the UI; login is a pick from this set.
type User struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}
