// Package feeds contains feed source configs and the clients that read them.
package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported source types.
	TypeTimeline = "timeline"
	TypeRSS      = "rss"
	TypeReddit   = "reddit"

	defaultTimeoutSeconds = 15
)

// Source is a single feed declared in the sources file.
type Source struct {
	ID             string         `json:"id" yaml:"id"`
	Type           string         `json:"type" yaml:"type"`
	SourceURL      string         `json:"source_url" yaml:"source_url"`
	TimeoutSeconds int            `json:"timeout_seconds" yaml:"timeout_seconds"`
	Config         map[string]any `json:"config" yaml:"config"`
}

type sourcesFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// SourceRegistry holds the validated sources loaded from a file.
type SourceRegistry struct {
	sources []Source
	idx     map[string]Source
}

// LoadSources loads the feed sources registry from a YAML/JSON file.
func LoadSources(path string) (*SourceRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("feeds file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	parsed, err := parseSources(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sources) == 0 {
		return nil, errors.New("feeds file contains no sources entries")
	}

	reg := &SourceRegistry{
		sources: make([]Source, len(parsed.Sources)),
		idx:     make(map[string]Source, len(parsed.Sources)),
	}
	for i := range parsed.Sources {
		src := sanitizeSource(parsed.Sources[i])
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[src.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		reg.sources[i] = src
		reg.idx[src.ID] = src
	}

	return reg, nil
}

func parseSources(data []byte, ext string) (sourcesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var parsed sourcesFile
		if err := d.fn(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	return sourcesFile{}, errors.New("feeds file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(src Source) Source {
	src.ID = strings.TrimSpace(src.ID)
	src.Type = strings.ToLower(strings.TrimSpace(src.Type))
	src.SourceURL = strings.TrimSpace(src.SourceURL)

	if src.Config == nil {
		src.Config = map[string]any{}
	}
	if src.TimeoutSeconds <= 0 {
		src.TimeoutSeconds = defaultTimeoutSeconds
	}
	return src
}

func validateSource(src Source) error {
	if src.ID == "" {
		return errors.New("id is required")
	}
	if src.Type == "" {
		return fmt.Errorf("type is required for source %q", src.ID)
	}
	switch src.Type {
	case TypeTimeline, TypeRSS:
		if src.SourceURL == "" {
			return fmt.Errorf("source_url is required for %s source %q", src.Type, src.ID)
		}
	case TypeReddit:
		if ConfigString(src, ConfigSubredditKey, "") == "" {
			return fmt.Errorf("config.%s is required for reddit source %q", ConfigSubredditKey, src.ID)
		}
	}
	return nil
}

// ByID returns the source with the given id.
func (r *SourceRegistry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	src, ok := r.idx[strings.TrimSpace(id)]
	return src, ok
}

// All returns every configured source in file order.
func (r *SourceRegistry) All() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Select returns the source named id, or the only source when id is empty.
func (r *SourceRegistry) Select(id string) (Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		if len(r.All()) != 1 {
			return Source{}, fmt.Errorf("feed_source must be set when %d sources are configured", len(r.All()))
		}
		return r.sources[0], nil
	}
	src, ok := r.ByID(id)
	if !ok {
		return Source{}, fmt.Errorf("unknown feed source %q", id)
	}
	return src, nil
}

// Timeout returns the request timeout for the source.
func (s Source) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}
