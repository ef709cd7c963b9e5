package storage

import (
	"context"
	"errors"

	"newsboard/internal/models"
)

// ErrNotFound is returned when the requested news item does not exist.
var ErrNotFound = errors.New("news item not found")

// Storage is the contract the news API serves from. Implementations must
// be safe for concurrent use.
type Storage interface {
	Users(ctx context.Context) ([]models.User, error)
	News(ctx context.Context) ([]models.NewsItem, error)
	NewsItem(ctx context.Context, id int64) (models.NewsItem, error)
	AddNews(ctx context.Context, item *models.NewsItem) error
	UpdateNews(ctx context.Context, id int64, patch models.NewsPatch) (models.NewsItem, error)
	DeleteNews(ctx context.Context, id int64) error
	Close() error
}

// SeedUsers is the fixed user directory loaded into an empty store.
// Login on the board is a pick from this set, there is no registration.
func SeedUsers() []models.User {
	return []models.User{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Charlie"},
		{ID: 4, Name: "Diana"},
	}
}
