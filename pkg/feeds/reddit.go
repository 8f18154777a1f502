package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
)

// postLister is the slice of the go-reddit subreddit service the reddit client uses.
type postLister interface {
	NewPosts(ctx context.Context, subreddit string, opts *goreddit.ListOptions) ([]*goreddit.Post, *goreddit.Response, error)
}

// redditClient pages through a subreddit's new listing, newest first.
type redditClient struct {
	id          string
	subreddit   string
	includeBody bool
	posts       postLister
}

func newRedditClient(src Source, _ HTTPClient) (Client, error) {
	subreddit := strings.TrimPrefix(ConfigString(src, ConfigSubredditKey, ""), "r/")
	if subreddit == "" {
		return nil, fmt.Errorf("reddit source %q missing config.%s", src.ID, ConfigSubredditKey)
	}

	opts := []goreddit.Opt{
		goreddit.WithHTTPClient(&http.Client{Timeout: src.Timeout()}),
		goreddit.WithUserAgent(ConfigString(src, ConfigUserAgentKey, "okbot/1.0")),
	}
	if src.SourceURL != "" {
		opts = append(opts, goreddit.WithBaseURL(src.SourceURL))
	}
	client, err := goreddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("reddit source %q: %w", src.ID, err)
	}

	return &redditClient{
		id:          src.ID,
		subreddit:   subreddit,
		includeBody: ConfigBool(src, ConfigIncludeBodyKey, false),
		posts:       client.Subreddit,
	}, nil
}

func (c *redditClient) Compare(a, b string) int { return CompareBase36(a, b) }

func (c *redditClient) Ascending() bool { return false }

func (c *redditClient) Fetch(ctx context.Context, count int, before string) ([]Item, error) {
	posts, _, err := c.posts.NewPosts(ctx, c.subreddit, &goreddit.ListOptions{Limit: count, After: before})
	if err != nil {
		return nil, fmt.Errorf("reddit %s: list r/%s: %w", c.id, c.subreddit, err)
	}

	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		if p == nil || p.FullID == "" {
			continue
		}
		if before != "" && c.Compare(p.FullID, before) >= 0 {
			continue
		}
		text := p.Title
		if c.includeBody && strings.TrimSpace(p.Body) != "" {
			text = p.Title + "\n" + p.Body
		}
		items = append(items, Item{ID: p.FullID, Text: text})
		if len(items) == count {
			break
		}
	}
	return items, nil
}
