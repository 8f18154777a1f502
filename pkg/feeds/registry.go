package feeds

import (
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Client for a configured source.
type Builder func(src Source, hc HTTPClient) (Client, error)

// Registry maps source types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	ClientFor(src Source, hc HTTPClient) (Client, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{builders: make(map[string]Builder)}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a source type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}
	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// ClientFor builds the client for src. hc may be nil for sources that bring their own transport.
func (r *registry) ClientFor(src Source, hc HTTPClient) (Client, error) {
	if src.Type == "" {
		return nil, fmt.Errorf("source %q has no type configured", src.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(src.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no feed client registered for type %q", src.Type)
	}
	return builder(src, hc)
}

// DefaultRegistry wires up the built-in source types.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeTimeline: newTimelineClient,
		TypeRSS:      newRSSClient,
		TypeReddit:   newRedditClient,
	})
}
