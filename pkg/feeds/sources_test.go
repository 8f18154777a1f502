package feeds

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSourcesYAML(t *testing.T) {
	path := writeFile(t, "feeds.yaml", `
sources:
  - id: " quotes "
    type: TIMELINE
    source_url: https://example.com/timeline.json
    config:
      bearer_token: abc
  - id: showerthoughts
    type: reddit
    config:
      subreddit: Showerthoughts
      include_body: "true"
`)

	reg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(reg.All()))
	}

	src, ok := reg.ByID("quotes")
	if !ok {
		t.Fatalf("quotes source missing")
	}
	if src.Type != TypeTimeline || src.TimeoutSeconds != defaultTimeoutSeconds {
		t.Fatalf("unexpected source %+v", src)
	}
	if h := Headers(src); h["Authorization"] != "Bearer abc" {
		t.Fatalf("unexpected headers %v", h)
	}

	reddit, _ := reg.ByID("showerthoughts")
	if !ConfigBool(reddit, ConfigIncludeBodyKey, false) {
		t.Fatalf("include_body should parse from string")
	}
}

func TestLoadSourcesJSON(t *testing.T) {
	path := writeFile(t, "feeds.json", `{"sources":[{"id":"news","type":"rss","source_url":"https://example.com/rss"}]}`)

	reg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	src, err := reg.Select("")
	if err != nil {
		t.Fatalf("Select single source: %v", err)
	}
	if src.ID != "news" {
		t.Fatalf("unexpected source %q", src.ID)
	}
}

func TestLoadSourcesRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
sources:
  - {id: a, type: rss, source_url: https://x}
  - {id: a, type: rss, source_url: https://y}
`,
		"missing url":       "sources:\n  - {id: a, type: timeline}\n",
		"missing subreddit": "sources:\n  - {id: a, type: reddit}\n",
		"missing id":        "sources:\n  - {type: rss, source_url: https://x}\n",
		"empty":             "sources: []\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSources(writeFile(t, "feeds.yaml", body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSelectRequiresIDWithManySources(t *testing.T) {
	path := writeFile(t, "feeds.yaml", `
sources:
  - {id: a, type: rss, source_url: https://x}
  - {id: b, type: rss, source_url: https://y}
`)
	reg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if _, err := reg.Select(""); err == nil {
		t.Fatalf("expected error selecting without id")
	}
	if _, err := reg.Select("c"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
	if src, err := reg.Select("b"); err != nil || src.SourceURL != "https://y" {
		t.Fatalf("Select b: %+v %v", src, err)
	}
}
