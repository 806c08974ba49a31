package domain

import (
	"net/url"
	"strings"
	"time"
)

// Item is an externally sourced content unit as handed to the selector.
type Item struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Origin       string     `json:"origin"`
	Domain       string     `json:"domain,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	HasThumbnail bool       `json:"thumbnail"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// Key returns the stable identifier, falling back to the URL.
func (i Item) Key() string {
	if id := strings.TrimSpace(i.ID); id != "" {
		return id
	}
	return strings.TrimSpace(i.URL)
}

// Host returns the explicit domain or the hostname parsed from the URL.
func (i Item) Host() string {
	if i.Domain != "" {
		return i.Domain
	}
	parsed, err := url.Parse(i.URL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// DedupeItems drops items whose key was already seen. The first occurrence wins.
func DedupeItems(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		key := it.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
