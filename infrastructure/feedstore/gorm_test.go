package feedstore

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AzielCF/az-digest/domains/feed"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	return db
}

func TestSeenRepository_MarkAndCheck(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSeenRepository(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSeenRepository() error: %v", err)
	}

	item := feed.Item{
		GUID:      "https://example.com/nota-1",
		FeedURL:   "https://example.com/rss",
		Published: time.Now().Add(-time.Hour),
	}

	seen, err := repo.IsSeen(ctx, item.GUID)
	if err != nil {
		t.Fatalf("IsSeen() error: %v", err)
	}
	if seen {
		t.Fatal("fresh item reported as seen")
	}

	if err := repo.MarkSeen(ctx, item); err != nil {
		t.Fatalf("MarkSeen() error: %v", err)
	}

	seen, err = repo.IsSeen(ctx, item.GUID)
	if err != nil {
		t.Fatalf("IsSeen() error: %v", err)
	}
	if !seen {
		t.Fatal("marked item not reported as seen")
	}
}

func TestSeenRepository_MarkSeenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSeenRepository(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSeenRepository() error: %v", err)
	}

	item := feed.Item{GUID: "guid-1", FeedURL: "https://example.com/rss"}
	if err := repo.MarkSeen(ctx, item); err != nil {
		t.Fatalf("first MarkSeen() error: %v", err)
	}
	if err := repo.MarkSeen(ctx, item); err != nil {
		t.Fatalf("second MarkSeen() must not fail on duplicate GUID: %v", err)
	}
}

func TestSeenRepository_Prune(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo, err := NewSeenRepository(db)
	if err != nil {
		t.Fatalf("NewSeenRepository() error: %v", err)
	}

	old := feed.SeenItem{GUID: "old", FeedURL: "f", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := feed.SeenItem{GUID: "fresh", FeedURL: "f", CreatedAt: time.Now()}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seed old: %v", err)
	}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	if err := repo.Prune(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	if seen, _ := repo.IsSeen(ctx, "old"); seen {
		t.Fatal("pruned item still visible")
	}
	if seen, _ := repo.IsSeen(ctx, "fresh"); !seen {
		t.Fatal("fresh item was pruned")
	}
}
