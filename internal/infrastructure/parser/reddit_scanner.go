package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/scanner"
)

const (
	redditBaseURL     = "https://www.reddit.com"
	redditUserAgent   = "featured-selector/1.0 (+weekly build)"
	defaultFeedLimit  = 4
	maxFeedLimit      = 16
	redditScannerName = "reddit"

	// Site options understood by the reddit strategy.
	optionConcurrency = "concurrency"
	optionBaseURL     = "baseURL"
)

// RedditScanner reads subreddit Atom feeds. A failing feed is logged and skipped.
type RedditScanner struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
	limit   int
}

// NewRedditScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewRedditScanner(client *http.Client, logger *slog.Logger) *RedditScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedditScanner{client: client, logger: logger, baseURL: redditBaseURL, limit: defaultFeedLimit}
}

// Name identifies the strategy inside the registry.
func (r *RedditScanner) Name() string {
	return redditScannerName
}

var _ scanner.OptionValidator = (*RedditScanner)(nil)

// ValidateOptions accepts "concurrency" (1..16 parallel feeds) and "baseURL"
// (an absolute http(s) URL replacing www.reddit.com).
func (r *RedditScanner) ValidateOptions(options map[string]string) error {
	_, err := r.settings(options)
	return err
}

type feedSettings struct {
	limit   int
	baseURL string
}

func (r *RedditScanner) settings(options map[string]string) (feedSettings, error) {
	fs := feedSettings{limit: r.limit, baseURL: r.baseURL}
	for key, value := range options {
		switch key {
		case optionConcurrency:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 || n > maxFeedLimit {
				return feedSettings{}, fmt.Errorf("option %s must be an integer in [1,%d], got %q", key, maxFeedLimit, value)
			}
			fs.limit = n
		case optionBaseURL:
			u, err := url.Parse(strings.TrimSpace(value))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return feedSettings{}, fmt.Errorf("option %s must be an absolute http(s) URL, got %q", key, value)
			}
			fs.baseURL = u.String()
		default:
			return feedSettings{}, fmt.Errorf("unknown option %q", key)
		}
	}
	return fs, nil
}

// Scan fetches every configured subreddit concurrently and keeps config order in the result.
func (r *RedditScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no subreddits provided for site %s", req.SiteName)
	}
	fs, err := r.settings(req.Options)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	perFeed := make([][]domain.Item, len(req.Categories))
	var g errgroup.Group
	g.SetLimit(fs.limit)

	for i, cat := range req.Categories {
		g.Go(func() error {
			feedURL := cat.URL
			if feedURL == "" {
				feedURL = subredditFeedURL(fs.baseURL, cat.Name)
			}

			doc, err := r.fetchDocument(ctx, feedURL)
			if err != nil {
				r.logger.Warn("feed failed", "subreddit", cat.Name, "url", feedURL, "error", err)
				return nil
			}

			items := parseFeed(doc, cat.Name)
			r.logger.Debug("feed parsed", "subreddit", cat.Name, "items", len(items))
			perFeed[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []domain.Item
	for _, items := range perFeed {
		results = append(results, items...)
	}
	return results, nil
}

func subredditFeedURL(baseURL, subreddit string) string {
	return fmt.Sprintf("%s/r/%s/.rss", strings.TrimSuffix(baseURL, "/"), url.PathEscape(subreddit))
}

func (r *RedditScanner) fetchDocument(ctx context.Context, feedURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)
	req.Header.Set("Accept", "application/atom+xml, application/rss+xml, application/xml, text/xml, */*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return doc, nil
}

func parseFeed(doc *goquery.Document, subreddit string) []domain.Item {
	var items []domain.Item
	doc.Find("entry").Each(func(_ int, entry *goquery.Selection) {
		if item, ok := parseEntry(entry, subreddit); ok {
			items = append(items, item)
		}
	})
	return items
}

// parseEntry maps one Atom entry. Entries without a title or link are skipped.
// The HTML parser does not honour XML self-closing tags, so fields are found by
// descendant search rather than as direct children.
func parseEntry(entry *goquery.Selection, subreddit string) (domain.Item, bool) {
	title := strings.TrimSpace(entry.Find("title").First().Text())
	link, _ := entry.Find("link").First().Attr("href")
	link = strings.TrimSpace(link)
	if title == "" || link == "" {
		return domain.Item{}, false
	}
	if strings.HasPrefix(link, "http://") {
		link = "https://" + strings.TrimPrefix(link, "http://")
	}

	id := strings.TrimSpace(entry.Find("id").First().Text())
	if id == "" {
		id = link
	}

	item := domain.Item{
		ID:           id,
		Title:        title,
		URL:          link,
		Origin:       subreddit,
		HasThumbnail: hasThumbnail(entry),
	}
	if parsed, err := url.Parse(link); err == nil {
		item.Domain = parsed.Hostname()
	}

	stamp := strings.TrimSpace(entry.Find("updated").First().Text())
	if stamp == "" {
		stamp = strings.TrimSpace(entry.Find("published").First().Text())
	}
	if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
		ts = ts.UTC()
		item.CreatedAt = &ts
	}
	return item, true
}

// hasThumbnail looks for a media:thumbnail element or an <img> inside the
// entry's escaped HTML content.
func hasThumbnail(entry *goquery.Selection) bool {
	found := false
	entry.Find("*").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if goquery.NodeName(child) == "media:thumbnail" {
			_, found = child.Attr("url")
		}
		return !found
	})
	if found {
		return true
	}

	content := entry.Find("content").First().Text()
	if !strings.Contains(content, "<img") {
		return false
	}
	inner, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return false
	}
	src, ok := inner.Find("img[src]").First().Attr("src")
	return ok && strings.TrimSpace(src) != ""
}
