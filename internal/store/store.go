// Package store persists harvested articles in postgres and performs the
// cross-run dedup check by URL or title.
package store

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
)

// ArticleRecord is the persisted shape of a standardized article.
type ArticleRecord struct {
	ID               string    `gorm:"primaryKey;size:40" json:"id"`
	Title            string    `gorm:"size:512;index" json:"title"`
	URL              string    `gorm:"size:1024;uniqueIndex" json:"url"`
	Description      string    `gorm:"size:2048" json:"description"`
	Source           string    `gorm:"size:128;index" json:"source"`
	Category         string    `gorm:"size:32;index" json:"category"`
	PublishedAt      time.Time `gorm:"index" json:"publishedAt"`
	FeaturedImageURL string    `gorm:"size:1024" json:"featuredImageUrl"`
	ThumbnailURL     string    `gorm:"size:1024" json:"thumbnailUrl"`
	ImageCaption     string    `gorm:"size:512" json:"imageCaption"`
	ImageAltText     string    `gorm:"size:512" json:"imageAltText"`
	Keywords         string    `gorm:"size:512" json:"keywords"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store wraps the gorm connection.
type Store struct {
	db *gorm.DB
}

// New opens the postgres connection and migrates the schema.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&ArticleRecord{}); err != nil {
		return nil, fmt.Errorf("migrate articles: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm connection, for tests.
func NewWithDB(db *gorm.DB) *Store { return &Store{db: db} }

// SaveNew inserts the article unless a record with the same URL or title
// already exists. It returns the stored (or pre-existing) record and whether
// an insert happened.
func (s *Store) SaveNew(art domain.Article) (*ArticleRecord, bool, error) {
	var existing ArticleRecord
	err := s.db.Where("url = ? OR title = ?", art.URL, art.Title).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("dedup lookup: %w", err)
	}

	rec := recordFromArticle(art)
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, false, fmt.Errorf("insert article: %w", err)
	}
	return &rec, true, nil
}

// UpdateImage sets the resolved image columns on a stored article.
func (s *Store) UpdateImage(id, imageURL string) error {
	err := s.db.Model(&ArticleRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"featured_image_url": imageURL,
			"thumbnail_url":      imageURL,
		}).Error
	if err != nil {
		return fmt.Errorf("update article image: %w", err)
	}
	return nil
}

// Recent returns the newest stored articles.
func (s *Store) Recent(limit int) ([]ArticleRecord, error) {
	var records []ArticleRecord
	err := s.db.Order("published_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return records, nil
}

func recordFromArticle(art domain.Article) ArticleRecord {
	id := art.ID
	if id == "" {
		id = hashURL(art.URL)
	}
	return ArticleRecord{
		ID:               id,
		Title:            art.Title,
		URL:              art.URL,
		Description:      art.Description,
		Source:           art.Source,
		Category:         art.Category,
		PublishedAt:      art.PublishedAt,
		FeaturedImageURL: art.FeaturedImageURL,
		ThumbnailURL:     art.ThumbnailURL,
		ImageCaption:     art.ImageCaption,
		ImageAltText:     art.ImageAltText,
		Keywords:         strings.Join(art.Keywords, ","),
	}
}

func hashURL(u string) string {
	sum := sha1.Sum([]byte(u)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
