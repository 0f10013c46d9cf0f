package feed

import (
	"context"
	"time"
)

type Kind string

const (
	KindNews    Kind = "news"
	KindYoutube Kind = "youtube"
)

// Item is a single entry taken from a feed.
type Item struct {
	FeedURL   string
	FeedTitle string
	Title     string
	Link      string
	GUID      string
	Published time.Time
	Thumbnail string
}

// SeenItem registers an already-published entry so reruns skip it.
type SeenItem struct {
	ID          uint   `gorm:"primaryKey"`
	GUID        string `gorm:"uniqueIndex;size:512"`
	FeedURL     string `gorm:"size:512"`
	PublishedAt time.Time
	CreatedAt   time.Time
}

type ISeenRepository interface {
	IsSeen(ctx context.Context, guid string) (bool, error)
	MarkSeen(ctx context.Context, item Item) error
	Prune(ctx context.Context, olderThan time.Time) error
}

// RunRequest is the REST payload to launch a digest run.
type RunRequest struct {
	Kind Kind `json:"kind"`
}

// RunReport summarizes one digest run.
type RunReport struct {
	RunID      string `json:"run_id"`
	Dispatched int    `json:"dispatched"`
	Skipped    int    `json:"skipped"`
}

type IDigestUsecase interface {
	// RunNews walks the configured RSS feeds and publishes summaries for
	// items that pass gating. Per-item failures never abort the run.
	RunNews(ctx context.Context) (RunReport, error)
	// RunYoutube walks the configured YouTube feeds and publishes video briefs.
	RunYoutube(ctx context.Context) (RunReport, error)
}
