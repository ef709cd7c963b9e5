// Package postgres implements the storage contract on PostgreSQL via gorm.
package postgres

import (
	"context"
	"errors"
	"log"

	"newsboard/internal/models"
	"newsboard/internal/storage"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Postgres struct {
	db *gorm.DB
}

// New connects, migrates the schema and seeds the user directory
// if the users table is empty.
func New(dsn string) (*Postgres, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.User{}, &models.NewsItem{}); err != nil {
		return nil, err
	}

	p := &Postgres{db: db}
	p.seedUsers()
	return p, nil
}

func (p *Postgres) seedUsers() {
	var count int64
	p.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("users already seeded, skipping")
		return
	}
	for _, user := range storage.SeedUsers() {
		if err := p.db.Create(&user).Error; err != nil {
			log.Printf("failed to seed user %s: %v", user.Name, err)
		}
	}
	log.Println("user directory seeded")
}

func (p *Postgres) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := p.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

func (p *Postgres) News(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	err := p.db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (p *Postgres) NewsItem(ctx context.Context, id int64) (models.NewsItem, error) {
	var item models.NewsItem
	err := p.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewsItem{}, storage.ErrNotFound
	}
	return item, err
}

func (p *Postgres) AddNews(ctx context.Context, item *models.NewsItem) error {
	if item.Comments == nil {
		item.Comments = models.CommentList{}
	}
	return p.db.WithContext(ctx).Create(item).Error
}

func (p *Postgres) UpdateNews(ctx context.Context, id int64, patch models.NewsPatch) (models.NewsItem, error) {
	updates := make(map[string]interface{}, 3)
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Body != nil {
		updates["body"] = *patch.Body
	}
	if patch.Comments != nil {
		updates["comments"] = *patch.Comments
	}

	if len(updates) > 0 {
		res := p.db.WithContext(ctx).Model(&models.NewsItem{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return models.NewsItem{}, res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewsItem{}, storage.ErrNotFound
		}
	}

	return p.NewsItem(ctx, id)
}

func (p *Postgres) DeleteNews(ctx context.Context, id int64) error {
	res := p.db.WithContext(ctx).Delete(&models.NewsItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
