package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AzielCF/az-digest/domains/feed"
)

const (
	httpTimeout  = 15 * time.Second
	maxFeedBytes = 5 << 20
)

var httpClient = &http.Client{Timeout: httpTimeout}

// rssDoc covers RSS 2.0. media:thumbnail se matchea por local name.
type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title     string `xml:"title"`
			Link      string `xml:"link"`
			GUID      string `xml:"guid"`
			PubDate   string `xml:"pubDate"`
			Thumbnail struct {
				URL string `xml:"url,attr"`
			} `xml:"thumbnail"`
			Enclosure struct {
				URL  string `xml:"url,attr"`
				Type string `xml:"type,attr"`
			} `xml:"enclosure"`
		} `xml:"item"`
	} `xml:"channel"`
}

// atomDoc covers Atom, which is what YouTube channel feeds use.
type atomDoc struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []struct {
		Title string `xml:"title"`
		ID    string `xml:"id"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Published string `xml:"published"`
		Group     struct {
			Thumbnail struct {
				URL string `xml:"url,attr"`
			} `xml:"thumbnail"`
		} `xml:"group"`
	} `xml:"entry"`
}

// Fetcher descarga y parsea feeds RSS/Atom.
type Fetcher struct{}

func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch downloads a feed and returns its entries, newest first as published
// by the feed. Both RSS 2.0 and Atom documents are accepted.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]feed.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "az-digest/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("feed %s: status %d", feedURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}

	return Parse(feedURL, data)
}

// Parse decodes a feed document. Exported so tests and tooling can parse
// fixtures without a server.
func Parse(feedURL string, data []byte) ([]feed.Item, error) {
	var rssFeed rssDoc
	if err := xml.Unmarshal(data, &rssFeed); err == nil {
		return fromRSS(feedURL, rssFeed), nil
	}

	var atomFeed atomDoc
	if err := xml.Unmarshal(data, &atomFeed); err != nil {
		return nil, fmt.Errorf("feed %s: not RSS nor Atom: %w", feedURL, err)
	}
	return fromAtom(feedURL, atomFeed), nil
}

func fromRSS(feedURL string, doc rssDoc) []feed.Item {
	items := make([]feed.Item, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		guid := strings.TrimSpace(it.GUID)
		if guid == "" {
			guid = strings.TrimSpace(it.Link)
		}
		thumb := it.Thumbnail.URL
		if thumb == "" && strings.HasPrefix(it.Enclosure.Type, "image/") {
			thumb = it.Enclosure.URL
		}
		items = append(items, feed.Item{
			FeedURL:   feedURL,
			FeedTitle: strings.TrimSpace(doc.Channel.Title),
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			GUID:      guid,
			Published: parseFeedTime(it.PubDate),
			Thumbnail: thumb,
		})
	}
	return items
}

func fromAtom(feedURL string, doc atomDoc) []feed.Item {
	items := make([]feed.Item, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		guid := strings.TrimSpace(e.ID)
		if guid == "" {
			guid = strings.TrimSpace(e.Link.Href)
		}
		items = append(items, feed.Item{
			FeedURL:   feedURL,
			FeedTitle: strings.TrimSpace(doc.Title),
			Title:     strings.TrimSpace(e.Title),
			Link:      strings.TrimSpace(e.Link.Href),
			GUID:      guid,
			Published: parseFeedTime(e.Published),
			Thumbnail: e.Group.Thumbnail.URL,
		})
	}
	return items
}

var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

func parseFeedTime(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
