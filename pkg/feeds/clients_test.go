package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/samvad-hq/okbot/pkg/httpclient"
)

func TestTimelineFetchAnchorsBelowBefore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "3" {
			t.Errorf("count = %q", got)
		}
		if got := r.URL.Query().Get("max_id"); got != "99" {
			t.Errorf("max_id = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		// 100 leaks through to check the client-side guard.
		fmt.Fprint(w, `[{"id":100,"text":"dup"},{"id":98,"text":"b"},{"id":"97","text":"c"},{"id":null,"text":"x"}]`)
	}))
	defer srv.Close()

	src := Source{ID: "t", Type: TypeTimeline, SourceURL: srv.URL, Config: map[string]any{ConfigBearerTokenKey: "tok"}}
	client, err := DefaultRegistry().ClientFor(src, httpclient.NewRestyClient(time.Second))
	if err != nil {
		t.Fatalf("ClientFor: %v", err)
	}

	items, err := client.Fetch(context.Background(), 3, "100")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 || items[0].ID != "98" || items[1].ID != "97" || items[1].Text != "c" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestTimelineFetchEnvelopeAndErrors(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("max_id") {
			t.Errorf("max_id must be omitted without anchor")
		}
		w.WriteHeader(status)
		fmt.Fprint(w, `{"items":[{"id":"5","text":"hi"}]}`)
	}))
	defer srv.Close()

	client, err := newTimelineClient(Source{ID: "t", SourceURL: srv.URL}, httpclient.NewRestyClient(time.Second))
	if err != nil {
		t.Fatalf("newTimelineClient: %v", err)
	}
	if client.Ascending() {
		t.Fatalf("timeline client must page backwards")
	}
	items, err := client.Fetch(context.Background(), 10, "")
	if err != nil || len(items) != 1 || items[0].Text != "hi" {
		t.Fatalf("unexpected result %+v %v", items, err)
	}

	status = http.StatusUnauthorized
	if _, err := client.Fetch(context.Background(), 10, ""); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := client.Fetch(context.Background(), 10, "abc"); err == nil {
		t.Fatalf("expected error for non numeric anchor")
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>t</title>
<item><guid>a</guid><title>oldest</title><description>old body</description><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
<item><guid>c</guid><title>newest</title><description>new body</description><pubDate>Wed, 04 Jan 2006 15:04:05 GMT</pubDate></item>
<item><guid>b</guid><title>middle</title><description>mid body</description><pubDate>Tue, 03 Jan 2006 15:04:05 GMT</pubDate></item>
</channel></rss>`

func TestRSSFetchReadsForwardOldestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	client, err := newRSSClient(Source{ID: "r", SourceURL: srv.URL, TimeoutSeconds: 2}, nil)
	if err != nil {
		t.Fatalf("newRSSClient: %v", err)
	}
	if !client.Ascending() {
		t.Fatalf("rss client must read forward")
	}

	items, err := client.Fetch(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 || items[0].Text != "oldest" || items[1].Text != "middle" {
		t.Fatalf("unexpected items %+v", items)
	}

	newer, err := client.Fetch(context.Background(), 5, items[1].ID)
	if err != nil {
		t.Fatalf("Fetch newer: %v", err)
	}
	if len(newer) != 1 || newer[0].Text != "newest" {
		t.Fatalf("unexpected newer items %+v", newer)
	}

	none, err := client.Fetch(context.Background(), 5, newer[0].ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected nothing past the newest entry, got %+v %v", none, err)
	}
}

func TestRSSFetchUsesDescriptionField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	src := Source{ID: "r", SourceURL: srv.URL, Config: map[string]any{ConfigFieldKey: "description"}}
	client, _ := newRSSClient(src, nil)
	items, err := client.Fetch(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 || items[0].Text != "old body" {
		t.Fatalf("unexpected items %+v", items)
	}
}

type fakeLister struct {
	posts []*goreddit.Post
	err   error
	opts  *goreddit.ListOptions
	sub   string
}

func (f *fakeLister) NewPosts(_ context.Context, sub string, opts *goreddit.ListOptions) ([]*goreddit.Post, *goreddit.Response, error) {
	f.sub = sub
	f.opts = opts
	return f.posts, nil, f.err
}

func TestRedditFetch(t *testing.T) {
	lister := &fakeLister{posts: []*goreddit.Post{
		{FullID: "t3_zz", Title: "too new"},
		{FullID: "t3_b", Title: "title", Body: "body"},
		{FullID: "", Title: "skip"},
		{FullID: "t3_a", Title: "older"},
	}}
	client := &redditClient{id: "r", subreddit: "quotes", includeBody: true, posts: lister}

	items, err := client.Fetch(context.Background(), 5, "t3_c")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if lister.sub != "quotes" || lister.opts.Limit != 5 || lister.opts.After != "t3_c" {
		t.Fatalf("unexpected list call %q %+v", lister.sub, lister.opts)
	}
	if len(items) != 2 || items[0].Text != "title\nbody" || items[1].ID != "t3_a" {
		t.Fatalf("unexpected items %+v", items)
	}

	lister.err = errors.New("rate limited")
	if _, err := client.Fetch(context.Background(), 5, ""); err == nil {
		t.Fatalf("expected lister error")
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	if _, err := DefaultRegistry().ClientFor(Source{ID: "x", Type: "mastodon"}, nil); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, err := DefaultRegistry().ClientFor(Source{ID: "x"}, nil); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestNewRedditClientRequiresSubreddit(t *testing.T) {
	if _, err := newRedditClient(Source{ID: "r"}, nil); err == nil {
		t.Fatalf("expected error without subreddit")
	}
	client, err := newRedditClient(Source{ID: "r", Config: map[string]any{ConfigSubredditKey: "r/quotes"}}, nil)
	if err != nil {
		t.Fatalf("newRedditClient: %v", err)
	}
	if rc := client.(*redditClient); rc.subreddit != "quotes" {
		t.Fatalf("subreddit = %q", rc.subreddit)
	}
}
