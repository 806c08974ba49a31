package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/scanner"
)

const jsonScannerName = "json-file"

// JSONFileScanner reads items exported by another tool. Each category URL is a
// file path holding either an item snapshot object or a bare array of items.
type JSONFileScanner struct{}

// NewJSONFileScanner returns the file-backed strategy.
func NewJSONFileScanner() *JSONFileScanner {
	return &JSONFileScanner{}
}

// Name identifies the strategy inside the registry.
func (j *JSONFileScanner) Name() string {
	return jsonScannerName
}

// Scan decodes every configured file. Items without an origin take the category name.
func (j *JSONFileScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no files provided for site %s", req.SiteName)
	}

	var results []domain.Item
	for _, cat := range req.Categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := cat.URL
		if path == "" {
			path = cat.Name
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		items, err := DecodeItems(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		for i := range items {
			if items[i].Origin == "" {
				items[i].Origin = cat.Name
			}
		}
		results = append(results, items...)
	}
	return results, nil
}

// exportedItem is the on-disk item shape. It accepts both this tool's own
// snapshots and feed exports that carry "subreddit", "created_utc" and a
// thumbnail URL instead of a flag.
type exportedItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Origin     string          `json:"origin"`
	Subreddit  string          `json:"subreddit"`
	Domain     string          `json:"domain"`
	Price      *float64        `json:"price"`
	Thumbnail  json.RawMessage `json:"thumbnail"`
	CreatedAt  *time.Time      `json:"createdAt"`
	CreatedUTC *float64        `json:"created_utc"`
	Date       string          `json:"date"`
}

type exportedSnapshot struct {
	Posts []exportedItem `json:"posts"`
}

// DecodeItems accepts a snapshot object ({"posts": [...]}) or a bare item array.
func DecodeItems(raw []byte) ([]domain.Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var exported []exportedItem
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &exported); err != nil {
			return nil, err
		}
	} else {
		var snap exportedSnapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return nil, err
		}
		exported = snap.Posts
	}

	items := make([]domain.Item, 0, len(exported))
	for _, e := range exported {
		items = append(items, e.item())
	}
	return items, nil
}

func (e exportedItem) item() domain.Item {
	origin := e.Origin
	if origin == "" {
		origin = e.Subreddit
	}
	return domain.Item{
		ID:           e.ID,
		Title:        e.Title,
		URL:          e.URL,
		Origin:       origin,
		Domain:       e.Domain,
		Price:        e.Price,
		HasThumbnail: thumbnailPresent(e.Thumbnail),
		CreatedAt:    e.createdAt(),
	}
}

// thumbnailPresent reads a flag, a URL string or null.
func thumbnailPresent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag
	}
	var link string
	if err := json.Unmarshal(raw, &link); err == nil {
		return strings.TrimSpace(link) != ""
	}
	return false
}

func (e exportedItem) createdAt() *time.Time {
	switch {
	case e.CreatedAt != nil:
		return e.CreatedAt
	case e.CreatedUTC != nil && *e.CreatedUTC > 0:
		sec := int64(*e.CreatedUTC)
		t := time.Unix(sec, 0).UTC()
		return &t
	case e.Date != "":
		if t, err := time.Parse(time.RFC3339, e.Date); err == nil {
			return &t
		}
	}
	return nil
}
