package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>El Observador</title>
    <item>
      <title>La inflacion subio este mes</title>
      <link>https://example.com/nota-1</link>
      <guid>https://example.com/nota-1</guid>
      <pubDate>Mon, 02 Jun 2025 10:30:00 -0300</pubDate>
      <media:thumbnail url="https://example.com/nota-1.jpg"/>
    </item>
    <item>
      <title>Segunda nota</title>
      <link>https://example.com/nota-2</link>
      <pubDate>2025-06-02T09:00:00Z</pubDate>
      <enclosure url="https://example.com/nota-2.png" type="image/png"/>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/">
  <title>Canal de Noticias</title>
  <entry>
    <id>yt:video:abc123</id>
    <title>Analisis del mercado</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
    <published>2025-06-01T18:00:00+00:00</published>
    <media:group>
      <media:thumbnail url="https://i.ytimg.com/vi/abc123/hqdefault.jpg"/>
    </media:group>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	t.Parallel()

	items, err := Parse("https://example.com/rss", []byte(rssFixture))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.FeedTitle != "El Observador" {
		t.Fatalf("feed title = %q", first.FeedTitle)
	}
	if first.Title != "La inflacion subio este mes" || first.Link != "https://example.com/nota-1" {
		t.Fatalf("item = %+v", first)
	}
	if first.GUID != "https://example.com/nota-1" {
		t.Fatalf("guid = %q", first.GUID)
	}
	if first.Thumbnail != "https://example.com/nota-1.jpg" {
		t.Fatalf("thumbnail = %q", first.Thumbnail)
	}
	if first.Published.IsZero() {
		t.Fatal("pubDate not parsed")
	}

	// Sin guid: cae al link. Sin media:thumbnail: cae al enclosure de imagen.
	second := items[1]
	if second.GUID != "https://example.com/nota-2" {
		t.Fatalf("guid fallback = %q", second.GUID)
	}
	if second.Thumbnail != "https://example.com/nota-2.png" {
		t.Fatalf("enclosure thumbnail = %q", second.Thumbnail)
	}
}

func TestParse_Atom(t *testing.T) {
	t.Parallel()

	items, err := Parse("https://youtube.com/feeds/videos.xml?channel_id=X", []byte(atomFixture))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.FeedTitle != "Canal de Noticias" {
		t.Fatalf("feed title = %q", item.FeedTitle)
	}
	if item.GUID != "yt:video:abc123" {
		t.Fatalf("guid = %q", item.GUID)
	}
	if item.Link != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("link = %q", item.Link)
	}
	if item.Thumbnail != "https://i.ytimg.com/vi/abc123/hqdefault.jpg" {
		t.Fatalf("thumbnail = %q", item.Thumbnail)
	}
	if !item.Published.Equal(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("published = %v", item.Published)
	}
}

func TestParse_InvalidDocument(t *testing.T) {
	t.Parallel()

	if _, err := Parse("https://example.com/rss", []byte("<html>not a feed</html>")); err == nil {
		t.Fatal("expected error for non-feed document")
	}
}

func TestFetch_DownloadsAndParses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	items, err := NewFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].FeedURL != srv.URL {
		t.Fatalf("feed URL = %q", items[0].FeedURL)
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewFetcher().Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
