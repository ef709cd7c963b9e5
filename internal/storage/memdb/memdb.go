// Package memdb is an in-memory stand-in for the real database,
// used for local development and tests.
package memdb

import (
	"context"
	"sort"
	"sync"

	"newsboard/internal/models"
	"newsboard/internal/storage"
)

type MemDB struct {
	mu     sync.RWMutex
	users  []models.User
	news   map[int64]models.NewsItem
	nextID int64
}

func New() *MemDB {
	return &MemDB{
		users:  storage.SeedUsers(),
		news:   make(map[int64]models.NewsItem),
		nextID: 1,
	}
}

func (db *MemDB) Users(_ context.Context) ([]models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]models.User, len(db.users))
	copy(out, db.users)
	return out, nil
}

func (db *MemDB) News(_ context.Context) ([]models.NewsItem, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]models.NewsItem, 0, len(db.news))
	for _, item := range db.news {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (db *MemDB) NewsItem(_ context.Context, id int64) (models.NewsItem, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	item, ok := db.news[id]
	if !ok {
		return models.NewsItem{}, storage.ErrNotFound
	}
	return item, nil
}

func (db *MemDB) AddNews(_ context.Context, item *models.NewsItem) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	item.ID = db.nextID
	db.nextID++
	if item.Comments == nil {
		item.Comments = models.CommentList{}
	}
	db.news[item.ID] = *item
	return nil
}

func (db *MemDB) UpdateNews(_ context.Context, id int64, patch models.NewsPatch) (models.NewsItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	item, ok := db.news[id]
	if !ok {
		return models.NewsItem{}, storage.ErrNotFound
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Body != nil {
		item.Body = *patch.Body
	}
	if patch.Comments != nil {
		item.Comments = *patch.Comments
	}
	db.news[id] = item
	return item, nil
}

func (db *MemDB) DeleteNews(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.news[id]; !ok {
		return storage.ErrNotFound
	}
	delete(db.news, id)
	return nil
}

func (db *MemDB) Close() error {
	return nil
}
