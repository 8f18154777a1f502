package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/samvad-hq/okbot/pkg/httpclient"
)

// timelineClient reads a JSON timeline that pages backwards with max_id, the way
// status timelines do.
type timelineClient struct {
	id      string
	url     string
	headers map[string]string
	http    HTTPClient
}

type timelineEntry struct {
	ID   json.RawMessage `json:"id"`
	Text string          `json:"text"`
}

type timelineEnvelope struct {
	Items []timelineEntry `json:"items"`
}

func newTimelineClient(src Source, hc HTTPClient) (Client, error) {
	if src.SourceURL == "" {
		return nil, fmt.Errorf("timeline source %q missing source_url", src.ID)
	}
	if hc == nil {
		hc = httpclient.NewRestyClient(src.Timeout())
	}
	return &timelineClient{
		id:      src.ID,
		url:     src.SourceURL,
		headers: Headers(src),
		http:    hc,
	}, nil
}

func (c *timelineClient) Compare(a, b string) int { return CompareNumeric(a, b) }

func (c *timelineClient) Ascending() bool { return false }

func (c *timelineClient) Fetch(ctx context.Context, count int, before string) ([]Item, error) {
	query := map[string]string{"count": strconv.Itoa(count)}
	if before != "" {
		n, err := strconv.ParseUint(before, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("timeline %s: invalid anchor id %q: %w", c.id, before, err)
		}
		if n == 0 {
			return nil, nil
		}
		query["max_id"] = strconv.FormatUint(n-1, 10)
	}

	resp, err := c.http.Get(ctx, c.url, query, c.headers)
	if err != nil {
		return nil, fmt.Errorf("timeline %s: request: %w", c.id, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("timeline %s: status %d: %s", c.id, resp.StatusCode(), httpclient.Snippet(resp.Body()))
	}

	entries, err := decodeTimeline(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("timeline %s: %w", c.id, err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		id := strings.Trim(strings.TrimSpace(string(e.ID)), `"`)
		if id == "" || id == "null" {
			continue
		}
		if before != "" && c.Compare(id, before) >= 0 {
			continue
		}
		items = append(items, Item{ID: id, Text: e.Text})
		if len(items) == count {
			break
		}
	}
	return items, nil
}

func decodeTimeline(body []byte) ([]timelineEntry, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var entries []timelineEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("decode timeline: %w", err)
		}
		return entries, nil
	}
	var env timelineEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	return env.Items, nil
}
