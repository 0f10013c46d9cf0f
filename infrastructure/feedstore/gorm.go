package feedstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AzielCF/az-digest/domains/feed"
)

// GormSeenRepository persiste los items ya publicados para deduplicar runs.
type GormSeenRepository struct {
	db *gorm.DB
}

func NewSeenRepository(db *gorm.DB) (*GormSeenRepository, error) {
	if err := db.AutoMigrate(&feed.SeenItem{}); err != nil {
		return nil, err
	}
	return &GormSeenRepository{db: db}, nil
}

func (r *GormSeenRepository) IsSeen(ctx context.Context, guid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&feed.SeenItem{}).
		Where("guid = ?", guid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormSeenRepository) MarkSeen(ctx context.Context, item feed.Item) error {
	record := feed.SeenItem{
		GUID:        item.GUID,
		FeedURL:     item.FeedURL,
		PublishedAt: item.Published,
	}
	// Dos workers pueden ver el mismo GUID en paralelo; el conflicto no es error.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
}

func (r *GormSeenRepository) Prune(ctx context.Context, olderThan time.Time) error {
	return r.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Delete(&feed.SeenItem{}).Error
}
