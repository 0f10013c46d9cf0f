package contentfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const httpTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

// Article es el resultado de scrapear una nota.
type Article struct {
	Text     string
	TopImage string
}

// Fetcher extrae texto e imagen principal de articulos, y descarga imagenes
// acotadas para adjuntarlas en Discord.
type Fetcher struct {
	maxImageBytes int64
}

func NewFetcher(maxImageBytes int64) *Fetcher {
	if maxImageBytes <= 0 {
		maxImageBytes = 7_000_000
	}
	return &Fetcher{maxImageBytes: maxImageBytes}
}

// FetchArticle downloads a page and extracts its readable text plus the
// og:image URL when present. Paragraphs inside <article> win over the rest
// of the page.
func (f *Fetcher) FetchArticle(ctx context.Context, articleURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
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
		return nil, fmt.Errorf("article %s: status %d", articleURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	text := extractParagraphs(doc.Find("article p"))
	if text == "" {
		text = extractParagraphs(doc.Find("p"))
	}
	if text == "" {
		return nil, fmt.Errorf("article %s: no readable text", articleURL)
	}

	topImage := doc.Find(`meta[property="og:image"]`).AttrOr("content", "")
	if topImage == "" {
		topImage = doc.Find(`meta[name="twitter:image"]`).AttrOr("content", "")
	}
	topImage = resolveURL(articleURL, topImage)

	return &Article{Text: text, TopImage: topImage}, nil
}

func extractParagraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}
