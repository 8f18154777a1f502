package feeds

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
)

const rssFieldDescription = "description"

// rssClient exposes an RSS/Atom feed as a Client. Entry ids are derived from the publish
// timestamp so that lexical order is chronological order. A feed document only carries its
// latest entries, so the client reads forward: entries newer than the anchor, oldest first.
type rssClient struct {
	id     string
	url    string
	field  string
	parser *gofeed.Parser
}

func newRSSClient(src Source, _ HTTPClient) (Client, error) {
	if src.SourceURL == "" {
		return nil, fmt.Errorf("rss source %q missing source_url", src.ID)
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: src.Timeout()}
	parser.UserAgent = ConfigString(src, ConfigUserAgentKey, "okbot/1.0")

	return &rssClient{
		id:     src.ID,
		url:    src.SourceURL,
		field:  strings.ToLower(ConfigString(src, ConfigFieldKey, "title")),
		parser: parser,
	}, nil
}

func (c *rssClient) Compare(a, b string) int { return CompareLexical(a, b) }

func (c *rssClient) Ascending() bool { return true }

func (c *rssClient) Fetch(ctx context.Context, count int, after string) ([]Item, error) {
	feed, err := c.parser.ParseURLWithContext(c.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("rss %s: parse feed: %w", c.id, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		id := rssItemID(entry)
		if after != "" && c.Compare(id, after) <= 0 {
			continue
		}
		items = append(items, Item{ID: id, Text: c.text(entry)})
	}

	sort.SliceStable(items, func(i, j int) bool { return c.Compare(items[i].ID, items[j].ID) < 0 })
	if count > 0 && len(items) > count {
		items = items[:count]
	}
	return items, nil
}

func (c *rssClient) text(entry *gofeed.Item) string {
	if c.field == rssFieldDescription && strings.TrimSpace(entry.Description) != "" {
		return entry.Description
	}
	return entry.Title
}

func rssItemID(entry *gofeed.Item) string {
	var nanos int64
	switch {
	case entry.PublishedParsed != nil:
		nanos = entry.PublishedParsed.UnixNano()
	case entry.UpdatedParsed != nil:
		nanos = entry.UpdatedParsed.UnixNano()
	}
	if nanos < 0 {
		nanos = 0
	}

	key := strings.TrimSpace(entry.GUID)
	if key == "" {
		key = strings.TrimSpace(entry.Link)
	}
	if key == "" {
		key = entry.Title
	}
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("%019d-%s", nanos, hex.EncodeToString(sum[:])[:12])
}
