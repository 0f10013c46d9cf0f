package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-digest/core/config"
	"github.com/AzielCF/az-digest/domains/feed"
	domainGating "github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/domains/summary"
	"github.com/AzielCF/az-digest/infrastructure/contentfetch"
	"github.com/AzielCF/az-digest/integrations/discord"
	"github.com/AzielCF/az-digest/pkg/feedworker"
)

const colorRed = 0xe74c3c

// FeedFetcher descarga las entradas de un feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]feed.Item, error)
}

// ArticleFetcher scrapea notas y descarga imagenes acotadas.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, articleURL string) (*contentfetch.Article, error)
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// EmbedPublisher publica embeds en el canal de destino.
type EmbedPublisher interface {
	PublishEmbed(ctx context.Context, embed discord.Embed) error
	PublishEmbedWithImage(ctx context.Context, embed discord.Embed, image []byte, filename string) error
}

// DigestService walks the configured feeds and publishes gated summaries.
// Items of the same feed are processed in order; distinct feeds run in
// parallel on the worker pool. A failed item is logged and skipped, it never
// aborts the run.
type DigestService struct {
	feeds      config.FeedsConfig
	fetcher    FeedFetcher
	articles   ArticleFetcher
	seen       feed.ISeenRepository
	gate       domainGating.IGatingUsecase
	summarizer summary.ISummaryUsecase
	videos     summary.VideoSummarizer
	publisher  EmbedPublisher
	pool       *feedworker.Pool
}

func NewDigestService(
	feeds config.FeedsConfig,
	fetcher FeedFetcher,
	articles ArticleFetcher,
	seen feed.ISeenRepository,
	gate domainGating.IGatingUsecase,
	summarizer summary.ISummaryUsecase,
	videos summary.VideoSummarizer,
	publisher EmbedPublisher,
	pool *feedworker.Pool,
) *DigestService {
	return &DigestService{
		feeds:      feeds,
		fetcher:    fetcher,
		articles:   articles,
		seen:       seen,
		gate:       gate,
		summarizer: summarizer,
		videos:     videos,
		publisher:  publisher,
		pool:       pool,
	}
}

// RunNews walks the RSS feeds and dispatches one job per unseen item.
func (s *DigestService) RunNews(ctx context.Context) (feed.RunReport, error) {
	report := feed.RunReport{RunID: uuid.NewString()}
	logrus.Infof("[DIGEST] News run %s started (%d feeds)", report.RunID, len(s.feeds.RSS))

	s.pruneSeen(ctx)

	for _, feedURL := range s.feeds.RSS {
		items, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			logrus.WithError(err).Errorf("[DIGEST] Failed to fetch feed %s", feedURL)
			continue
		}
		for _, item := range s.capItems(items) {
			s.dispatchItem(ctx, &report, item, s.processNewsItem)
		}
	}

	logrus.Infof("[DIGEST] News run %s dispatched=%d skipped=%d",
		report.RunID, report.Dispatched, report.Skipped)
	return report, nil
}

// RunYoutube walks the YouTube feeds and dispatches video brief jobs.
func (s *DigestService) RunYoutube(ctx context.Context) (feed.RunReport, error) {
	report := feed.RunReport{RunID: uuid.NewString()}
	logrus.Infof("[DIGEST] YouTube run %s started (%d feeds)", report.RunID, len(s.feeds.Youtube))

	for _, feedURL := range s.feeds.Youtube {
		items, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			logrus.WithError(err).Errorf("[DIGEST] Failed to fetch YouTube feed %s", feedURL)
			continue
		}
		for _, item := range s.capItems(items) {
			s.dispatchItem(ctx, &report, item, s.processVideoItem)
		}
	}

	logrus.Infof("[DIGEST] YouTube run %s dispatched=%d skipped=%d",
		report.RunID, report.Dispatched, report.Skipped)
	return report, nil
}

// Stats expone las métricas del pool para el endpoint de estado.
func (s *DigestService) Stats() feedworker.PoolStats {
	return s.pool.GetStats()
}

// Close drains the pool, finishing any queued items.
func (s *DigestService) Close() {
	s.pool.Stop()
}

func (s *DigestService) capItems(items []feed.Item) []feed.Item {
	if s.feeds.MaxItems > 0 && len(items) > s.feeds.MaxItems {
		return items[:s.feeds.MaxItems]
	}
	return items
}

func (s *DigestService) dispatchItem(ctx context.Context, report *feed.RunReport, item feed.Item, handler func(context.Context, feed.Item) error) {
	seen, err := s.seen.IsSeen(ctx, item.GUID)
	if err != nil {
		logrus.WithError(err).Warnf("[DIGEST] Seen lookup failed for %s", item.GUID)
	}
	if seen {
		report.Skipped++
		return
	}

	ok := s.pool.TryDispatch(feedworker.Job{
		RunID:   report.RunID,
		FeedURL: item.FeedURL,
		Handler: func(jobCtx context.Context) error {
			return handler(jobCtx, item)
		},
	})
	if ok {
		report.Dispatched++
	} else {
		report.Skipped++
	}
}

func (s *DigestService) processNewsItem(ctx context.Context, item feed.Item) error {
	art, err := s.articles.FetchArticle(ctx, item.Link)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", item.Link, err)
	}

	decision := s.gate.Decide(ctx, art.Text)
	if !decision.Allowed {
		logrus.Infof("[DIGEST] Gating denied %q, not publishing", item.Title)
		s.markSeen(ctx, item)
		return nil
	}

	summaryText, ok := s.summarizer.Summarize(ctx, art.Text, summary.RoleArticle)
	if !ok {
		// Sin marcar como visto: el proximo run lo reintenta.
		return fmt.Errorf("summary failed for %q", item.Title)
	}

	embed := discord.Embed{
		Title:       item.Title,
		Description: summaryText,
		URL:         item.Link,
		Color:       discord.ColorBlue,
		Footer:      &discord.EmbedFooter{Text: "Source: " + item.FeedTitle},
	}

	imageURL := art.TopImage
	if imageURL == "" {
		imageURL = item.Thumbnail
	}

	var image []byte
	if imageURL != "" {
		image, err = s.articles.DownloadImage(ctx, imageURL)
		if err != nil {
			logrus.WithError(err).Warnf("[DIGEST] Image download failed for %q, publishing without it", item.Title)
			image = nil
		}
	}

	if len(image) > 0 {
		err = s.publisher.PublishEmbedWithImage(ctx, embed, image, contentfetch.FileNameFromURL(imageURL))
	} else {
		err = s.publisher.PublishEmbed(ctx, embed)
	}
	if err != nil {
		return fmt.Errorf("publish %q: %w", item.Title, err)
	}

	s.markSeen(ctx, item)
	logrus.Infof("[DIGEST] Published %q (matched %v)", item.Title, decision.Matches)
	return nil
}

func (s *DigestService) processVideoItem(ctx context.Context, item feed.Item) error {
	brief, ok := s.videos.SummarizeVideo(ctx, item.Link)
	if !ok {
		return fmt.Errorf("video brief failed for %q", item.Title)
	}

	embed := discord.Embed{
		Title:       item.Title,
		Description: brief,
		URL:         item.Link,
		Color:       colorRed,
		Footer:      &discord.EmbedFooter{Text: "Source: " + item.FeedTitle},
	}
	if item.Thumbnail != "" {
		embed.Image = &discord.EmbedImage{URL: item.Thumbnail}
	}

	if err := s.publisher.PublishEmbed(ctx, embed); err != nil {
		return fmt.Errorf("publish %q: %w", item.Title, err)
	}

	s.markSeen(ctx, item)
	logrus.Infof("[DIGEST] Published video brief %q", item.Title)
	return nil
}

func (s *DigestService) markSeen(ctx context.Context, item feed.Item) {
	if err := s.seen.MarkSeen(ctx, item); err != nil {
		logrus.WithError(err).Warnf("[DIGEST] Failed to mark %s as seen", item.GUID)
	}
}

func (s *DigestService) pruneSeen(ctx context.Context) {
	if s.feeds.SeenRetained <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.feeds.SeenRetained)
	if err := s.seen.Prune(ctx, cutoff); err != nil {
		logrus.WithError(err).Warn("[DIGEST] Failed to prune seen items")
	}
}
