package feeds

import (
	"context"

	"github.com/samvad-hq/okbot/pkg/httpclient"
)

// Item is one raw entry pulled from a feed source.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Client pulls items from a feed source.
//
// Paged archives (timelines, subreddit listings) are walked backwards: Ascending reports
// false, Fetch returns items newest first and anchor is the oldest id already known.
// Sliding-window feeds (RSS/Atom) only ever show their latest entries: Ascending reports
// true, Fetch returns items oldest first and anchor is the newest id already known.
type Client interface {
	// Fetch returns up to count items beyond anchor in the feed's direction. An empty
	// anchor starts from the feed's natural beginning. Fewer than count items is valid.
	Fetch(ctx context.Context, count int, anchor string) ([]Item, error)
	// Compare orders two ids of this feed: negative when a is older than b, zero when equal.
	Compare(a, b string) int
	// Ascending reports whether the feed is consumed oldest to newest.
	Ascending() bool
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within feeds.
type HTTPClient = httpclient.Client
