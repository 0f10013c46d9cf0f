package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AzielCF/az-digest/core/config"
	"github.com/AzielCF/az-digest/domains/feed"
	domainGating "github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/domains/summary"
	"github.com/AzielCF/az-digest/infrastructure/contentfetch"
	"github.com/AzielCF/az-digest/integrations/discord"
	"github.com/AzielCF/az-digest/pkg/feedworker"
)

type fakeFeedFetcher struct {
	feeds map[string][]feed.Item
	errs  map[string]error
}

func (f *fakeFeedFetcher) Fetch(ctx context.Context, feedURL string) ([]feed.Item, error) {
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return f.feeds[feedURL], nil
}

type fakeArticleFetcher struct {
	article    *contentfetch.Article
	articleErr error
	image      []byte
	imageErr   error
}

func (f *fakeArticleFetcher) FetchArticle(ctx context.Context, articleURL string) (*contentfetch.Article, error) {
	return f.article, f.articleErr
}

func (f *fakeArticleFetcher) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	return f.image, f.imageErr
}

type memSeenRepo struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemSeenRepo() *memSeenRepo { return &memSeenRepo{seen: map[string]bool{}} }

func (r *memSeenRepo) IsSeen(ctx context.Context, guid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[guid], nil
}

func (r *memSeenRepo) MarkSeen(ctx context.Context, item feed.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[item.GUID] = true
	return nil
}

func (r *memSeenRepo) Prune(ctx context.Context, olderThan time.Time) error { return nil }

type fixedGate struct {
	decision domainGating.Decision
}

func (g *fixedGate) Decide(ctx context.Context, text string) domainGating.Decision {
	return g.decision
}

type fixedSummarizer struct {
	out string
	ok  bool
}

func (s *fixedSummarizer) Summarize(ctx context.Context, text string, role summary.Role) (string, bool) {
	return s.out, s.ok
}

type fixedVideoSummarizer struct {
	out string
	ok  bool
}

func (s *fixedVideoSummarizer) SummarizeVideo(ctx context.Context, videoURL string) (string, bool) {
	return s.out, s.ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	embeds []discord.Embed
	images [][]byte
	err    error
}

func (p *recordingPublisher) PublishEmbed(ctx context.Context, embed discord.Embed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.embeds = append(p.embeds, embed)
	p.images = append(p.images, nil)
	return nil
}

func (p *recordingPublisher) PublishEmbedWithImage(ctx context.Context, embed discord.Embed, image []byte, filename string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.embeds = append(p.embeds, embed)
	p.images = append(p.images, image)
	return nil
}

func (p *recordingPublisher) published() []discord.Embed {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]discord.Embed, len(p.embeds))
	copy(out, p.embeds)
	return out
}

type digestFixture struct {
	fetcher    *fakeFeedFetcher
	articles   *fakeArticleFetcher
	seen       *memSeenRepo
	gate       *fixedGate
	summarizer *fixedSummarizer
	videos     *fixedVideoSummarizer
	publisher  *recordingPublisher
}

func newDigestFixture() *digestFixture {
	return &digestFixture{
		fetcher:    &fakeFeedFetcher{feeds: map[string][]feed.Item{}, errs: map[string]error{}},
		articles:   &fakeArticleFetcher{article: &contentfetch.Article{Text: "La inflacion subio este mes"}},
		seen:       newMemSeenRepo(),
		gate:       &fixedGate{decision: domainGating.Decision{Allowed: true, Matches: []string{"inflacion"}}},
		summarizer: &fixedSummarizer{out: "un resumen", ok: true},
		videos:     &fixedVideoSummarizer{out: "un brief", ok: true},
		publisher:  &recordingPublisher{},
	}
}

func (f *digestFixture) service(t *testing.T, feeds config.FeedsConfig) *DigestService {
	t.Helper()
	pool := feedworker.NewPool(2, 16)
	pool.Start(context.Background())
	return NewDigestService(feeds, f.fetcher, f.articles, f.seen, f.gate, f.summarizer, f.videos, f.publisher, pool)
}

func newsItem(n string) feed.Item {
	return feed.Item{
		FeedURL:   "https://example.com/rss",
		FeedTitle: "El Observador",
		Title:     "Nota " + n,
		Link:      "https://example.com/" + n,
		GUID:      "guid-" + n,
	}
}

func TestRunNews_PublishesAllowedItems(t *testing.T) {
	f := newDigestFixture()
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}, MaxItems: 2})
	report, err := svc.RunNews(context.Background())
	if err != nil {
		t.Fatalf("RunNews() error: %v", err)
	}
	svc.Close()

	if report.RunID == "" {
		t.Fatal("run must carry an id")
	}
	if report.Dispatched != 1 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}

	embeds := f.publisher.published()
	if len(embeds) != 1 {
		t.Fatalf("published %d embeds, want 1", len(embeds))
	}
	e := embeds[0]
	if e.Title != "Nota 1" || e.Description != "un resumen" || e.URL != "https://example.com/1" {
		t.Fatalf("embed = %+v", e)
	}
	if e.Footer == nil || e.Footer.Text != "Source: El Observador" {
		t.Fatalf("footer = %+v", e.Footer)
	}

	if seen, _ := f.seen.IsSeen(context.Background(), "guid-1"); !seen {
		t.Fatal("published item must be marked seen")
	}
}

func TestRunNews_GatingDenySkipsPublishButMarksSeen(t *testing.T) {
	f := newDigestFixture()
	f.gate.decision = domainGating.Decision{Allowed: false}
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}})
	_, _ = svc.RunNews(context.Background())
	svc.Close()

	if got := f.publisher.published(); len(got) != 0 {
		t.Fatalf("denied item was published: %+v", got)
	}
	if seen, _ := f.seen.IsSeen(context.Background(), "guid-1"); !seen {
		t.Fatal("denied item must be marked seen so it is not re-evaluated")
	}
}

func TestRunNews_SeenItemsAreSkipped(t *testing.T) {
	f := newDigestFixture()
	item := newsItem("1")
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{item}
	_ = f.seen.MarkSeen(context.Background(), item)

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}})
	report, _ := svc.RunNews(context.Background())
	svc.Close()

	if report.Dispatched != 0 || report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if got := f.publisher.published(); len(got) != 0 {
		t.Fatalf("seen item was republished: %+v", got)
	}
}

func TestRunNews_SummaryFailureLeavesItemUnseen(t *testing.T) {
	f := newDigestFixture()
	f.summarizer.ok = false
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}})
	_, _ = svc.RunNews(context.Background())
	svc.Close()

	if got := f.publisher.published(); len(got) != 0 {
		t.Fatalf("failed item was published: %+v", got)
	}
	// Sin resumen no se marca como visto: el proximo run lo reintenta.
	if seen, _ := f.seen.IsSeen(context.Background(), "guid-1"); seen {
		t.Fatal("failed item must stay unseen for retry")
	}
}

func TestRunNews_RespectsMaxItems(t *testing.T) {
	f := newDigestFixture()
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1"), newsItem("2"), newsItem("3")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}, MaxItems: 2})
	report, _ := svc.RunNews(context.Background())
	svc.Close()

	if report.Dispatched != 2 {
		t.Fatalf("dispatched = %d, want 2 (MaxItems cap)", report.Dispatched)
	}
}

func TestRunNews_FeedErrorDoesNotAbortRun(t *testing.T) {
	f := newDigestFixture()
	f.fetcher.errs["https://broken.example.com/rss"] = errors.New("timeout")
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{
		"https://broken.example.com/rss",
		"https://example.com/rss",
	}})
	report, err := svc.RunNews(context.Background())
	if err != nil {
		t.Fatalf("RunNews() must not fail on a single broken feed: %v", err)
	}
	svc.Close()

	if report.Dispatched != 1 {
		t.Fatalf("dispatched = %d, want 1 from the healthy feed", report.Dispatched)
	}
}

func TestRunNews_AttachesImageWhenAvailable(t *testing.T) {
	f := newDigestFixture()
	f.articles.article = &contentfetch.Article{Text: "texto", TopImage: "https://example.com/portada.jpg"}
	f.articles.image = []byte{1, 2, 3}
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}})
	_, _ = svc.RunNews(context.Background())
	svc.Close()

	f.publisher.mu.Lock()
	defer f.publisher.mu.Unlock()
	if len(f.publisher.images) != 1 || len(f.publisher.images[0]) != 3 {
		t.Fatalf("images = %v, want one attached payload", f.publisher.images)
	}
}

func TestRunNews_ImageFailureStillPublishes(t *testing.T) {
	f := newDigestFixture()
	f.articles.article = &contentfetch.Article{Text: "texto", TopImage: "https://example.com/portada.jpg"}
	f.articles.imageErr = errors.New("too large")
	f.fetcher.feeds["https://example.com/rss"] = []feed.Item{newsItem("1")}

	svc := f.service(t, config.FeedsConfig{RSS: []string{"https://example.com/rss"}})
	_, _ = svc.RunNews(context.Background())
	svc.Close()

	if got := f.publisher.published(); len(got) != 1 {
		t.Fatalf("published %d embeds, want 1 without image", len(got))
	}
}

func TestRunYoutube_PublishesBriefs(t *testing.T) {
	f := newDigestFixture()
	f.fetcher.feeds["https://youtube.com/feed"] = []feed.Item{{
		FeedURL:   "https://youtube.com/feed",
		FeedTitle: "Canal",
		Title:     "Video 1",
		Link:      "https://www.youtube.com/watch?v=abc",
		GUID:      "yt:video:abc",
		Thumbnail: "https://i.ytimg.com/vi/abc/hq.jpg",
	}}

	svc := f.service(t, config.FeedsConfig{Youtube: []string{"https://youtube.com/feed"}})
	report, err := svc.RunYoutube(context.Background())
	if err != nil {
		t.Fatalf("RunYoutube() error: %v", err)
	}
	svc.Close()

	if report.Dispatched != 1 {
		t.Fatalf("report = %+v", report)
	}
	embeds := f.publisher.published()
	if len(embeds) != 1 {
		t.Fatalf("published %d embeds, want 1", len(embeds))
	}
	e := embeds[0]
	if e.Description != "un brief" || e.Color != colorRed {
		t.Fatalf("embed = %+v", e)
	}
	if e.Image == nil || e.Image.URL != "https://i.ytimg.com/vi/abc/hq.jpg" {
		t.Fatalf("embed image = %+v", e.Image)
	}
	if seen, _ := f.seen.IsSeen(context.Background(), "yt:video:abc"); !seen {
		t.Fatal("published video must be marked seen")
	}
}
