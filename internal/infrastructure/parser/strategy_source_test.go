package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeaturedSelector/internal/config"
	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/editorial"
	"FeaturedSelector/internal/scanner"
)

type failingScanner struct{}

func (failingScanner) Name() string { return "broken" }

func (failingScanner) Scan(context.Context, scanner.Request) ([]domain.Item, error) {
	return nil, errors.New("upstream down")
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDecodeItems(t *testing.T) {
	t.Parallel()

	items, err := DecodeItems([]byte(`{"generatedAt":"2026-10-18T00:00:00Z","sourcesUsed":["rss:gadgets"],"posts":[{"id":"a","title":"A","url":"https://a","thumbnail":true}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].HasThumbnail)

	items, err = DecodeItems([]byte(` [{"id":"b","title":"B","url":"https://b","price":9.5}] `))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 9.5, *items[0].Price)

	items, err = DecodeItems(nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = DecodeItems([]byte(`{"posts": 3}`))
	assert.Error(t, err)
}

const feedExport = `{
  "generatedAt": "2026-10-18T06:00:00.000Z",
  "sourcesUsed": ["reddit-rss"],
  "subreddits": ["ShutUpAndTakeMyMoney", "aww"],
  "posts": [
    {
      "id": "t3_gadget",
      "title": "A lamp shaped like a duck",
      "url": "https://www.reddit.com/r/ShutUpAndTakeMyMoney/comments/gadget/",
      "subreddit": "ShutUpAndTakeMyMoney",
      "source": "reddit-rss",
      "created_utc": 1792303200,
      "date": "2026-10-17T06:00:00+00:00",
      "domain": "www.reddit.com",
      "thumbnail": null
    },
    {
      "id": "t3_cat",
      "title": "Cat discovers the printer",
      "url": "https://i.redd.it/cat.jpg",
      "subreddit": "aww",
      "created_utc": null,
      "date": "2026-10-17T07:30:00+00:00",
      "domain": "i.redd.it",
      "thumbnail": "https://i.redd.it/cat_thumb.jpg"
    }
  ]
}`

func TestDecodeItemsReadsFeedExport(t *testing.T) {
	t.Parallel()

	items, err := DecodeItems([]byte(feedExport))
	require.NoError(t, err)
	require.Len(t, items, 2)

	gadget := items[0]
	assert.Equal(t, "ShutUpAndTakeMyMoney", gadget.Origin)
	assert.False(t, gadget.HasThumbnail)
	require.NotNil(t, gadget.CreatedAt)
	assert.Equal(t, time.Unix(1792303200, 0).UTC(), *gadget.CreatedAt)
	assert.Equal(t, domain.CategoryCommerce, editorial.Classify(gadget))

	cat := items[1]
	assert.Equal(t, "aww", cat.Origin)
	assert.True(t, cat.HasThumbnail)
	require.NotNil(t, cat.CreatedAt)
	assert.Equal(t, 7, cat.CreatedAt.Hour())

	items, err = DecodeItems([]byte(`[{"id":"x","title":"X","url":"https://x","thumbnail":"https://i.redd.it/a.jpg","origin":"mine","subreddit":"theirs"}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].HasThumbnail)
	assert.Equal(t, "mine", items[0].Origin, "explicit origin wins")
}

func TestStrategySourceAggregatesAndSkipsFailures(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "items.json", `[{"id":"a","title":"A","url":"https://a"},{"id":"b","title":"B","url":"https://b","origin":"shop"}]`)

	reg := scanner.NewRegistry()
	reg.Register(NewJSONFileScanner())
	reg.Register(failingScanner{})

	src := NewStrategySource(reg, []config.SiteConfig{
		{Name: "down", Scanner: "broken", Categories: []config.CategoryConfig{{Name: "feed"}}},
		{Name: "local", Scanner: "json-file", Categories: []config.CategoryConfig{{Name: "export", URL: path}}},
	}, nil)

	items, err := src.Fetch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "export", items[0].Origin)
	assert.Equal(t, "shop", items[1].Origin)
}

func TestStrategySourceFailsWhenEverySiteFails(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(failingScanner{})

	src := NewStrategySource(reg, []config.SiteConfig{{Name: "down", Scanner: "broken", Categories: []config.CategoryConfig{{Name: "feed"}}}}, nil)
	_, err := src.Fetch(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")

	src = NewStrategySource(reg, []config.SiteConfig{{Name: "x", Scanner: "missing"}}, nil)
	_, err = src.Fetch(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestStrategySourceCheck(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(NewJSONFileScanner())
	reg.Register(NewRedditScanner(nil, nil))

	good := NewStrategySource(reg, []config.SiteConfig{
		{Name: "reddit", Scanner: "reddit", Categories: []config.CategoryConfig{{Name: "aww"}}, Options: map[string]string{"concurrency": "2"}},
		{Name: "export", Scanner: "json-file", Categories: []config.CategoryConfig{{URL: "posts.json"}}},
	}, nil)
	assert.NoError(t, good.Check())

	bad := NewStrategySource(reg, []config.SiteConfig{
		{Name: "reddit", Scanner: "reddit", Categories: []config.CategoryConfig{{Name: "aww"}}, Options: map[string]string{"concurrency": "99"}},
		{Name: "export", Scanner: "json-file", Categories: []config.CategoryConfig{{URL: "posts.json"}}, Options: map[string]string{"origin": "x"}},
		{Name: "empty", Scanner: "reddit"},
	}, nil)
	err := bad.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "takes no options")
	assert.Contains(t, err.Error(), "no categories")

	_, err = bad.Fetch(context.Background(), time.Now())
	assert.Error(t, err, "misconfigured sites are fatal before any fetch")
}
