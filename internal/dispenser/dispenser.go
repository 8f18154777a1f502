// Package dispenser buffers feed items and hands them out one at a time, either in
// arrival order or ranked by similarity to a target message. Every dispensed id is
// recorded in a ledger so it is never handed out again, across restarts included.
package dispenser

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/samvad-hq/okbot/internal/logger"
	"github.com/samvad-hq/okbot/internal/sanitize"
	"github.com/samvad-hq/okbot/internal/similarity"
	"github.com/samvad-hq/okbot/internal/storage"
	"github.com/samvad-hq/okbot/pkg/feeds"
)

const (
	defaultPullCount = 20
	defaultIdealLen  = 100
)

// Sanitizer cleans raw item text before it is buffered.
type Sanitizer interface {
	Sanitize(text string) string
}

// Scorer ranks a candidate text against a target; lower is closer.
type Scorer interface {
	NormalizedDistance(candidate, target string) float64
}

// Options configures pull sizes.
type Options struct {
	// DefaultPullCount is used when an unranked Next finds the buffer empty.
	DefaultPullCount int
	// IdealBufferLen is the candidate pool a ranked Next tops up to once the buffer
	// drops to half of it.
	IdealBufferLen int
}

type entry struct {
	id   string
	text string
}

// Dispenser owns the buffer and the in-memory seen set. It is not safe for concurrent
// use; callers serialize access.
type Dispenser struct {
	client    feeds.Client
	ledger    storage.Ledger
	sanitizer Sanitizer
	scorer    Scorer
	opts      Options
	log       logger.Logger

	seen   map[string]struct{}
	queued map[string]struct{}
	buffer []entry
	// oldest and newest bound every id seen or buffered. Pulls ask for items beyond
	// oldest on descending feeds and beyond newest on ascending ones.
	oldest string
	newest string
}

// New hydrates a Dispenser from ledger. A nil sanitizer or scorer gets the default one.
func New(client feeds.Client, ledger storage.Ledger, san Sanitizer, scorer Scorer, opts Options, log logger.Logger) (*Dispenser, error) {
	if client == nil {
		return nil, fmt.Errorf("dispenser requires a feed client")
	}
	if ledger == nil {
		return nil, fmt.Errorf("dispenser requires a ledger")
	}
	if san == nil {
		san = sanitize.New()
	}
	if scorer == nil {
		scorer = similarity.NewScorer()
	}
	if opts.DefaultPullCount <= 0 {
		opts.DefaultPullCount = defaultPullCount
	}
	if opts.IdealBufferLen <= 0 {
		opts.IdealBufferLen = defaultIdealLen
	}

	ids, err := ledger.Load()
	if err != nil {
		return nil, fmt.Errorf("load seen ids: %w", err)
	}

	d := &Dispenser{
		client:    client,
		ledger:    ledger,
		sanitizer: san,
		scorer:    scorer,
		opts:      opts,
		log:       logger.Ensure(log),
		seen:      make(map[string]struct{}, len(ids)),
		queued:    make(map[string]struct{}),
	}
	for _, id := range ids {
		d.seen[id] = struct{}{}
		d.track(id)
	}

	d.log.DebugObj("dispenser hydrated", "dispenser_state", map[string]any{
		"seen_ids":  len(d.seen),
		"anchor":    d.anchor(),
		"ascending": client.Ascending(),
	})
	return d, nil
}

// Pull fetches up to count items beyond anything seen or buffered, sanitizes them and
// appends them to the buffer. Feed client errors are returned as is. ErrEmptyFeed
// is returned when nothing new arrived.
func (d *Dispenser) Pull(ctx context.Context, count int) error {
	if count <= 0 {
		count = d.opts.DefaultPullCount
	}

	items, err := d.client.Fetch(ctx, count, d.anchor())
	if err != nil {
		return err
	}

	added := 0
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, ok := d.seen[it.ID]; ok {
			continue
		}
		if _, ok := d.queued[it.ID]; ok {
			continue
		}
		d.queued[it.ID] = struct{}{}
		d.buffer = append(d.buffer, entry{id: it.ID, text: d.sanitizer.Sanitize(it.Text)})
		d.track(it.ID)
		added++
	}

	d.log.DebugObj("feed pulled", "dispenser_pull", map[string]any{
		"requested": count,
		"fetched":   len(items),
		"added":     added,
		"buffered":  len(d.buffer),
	})

	if added == 0 {
		return ErrEmptyFeed
	}
	return nil
}

// Next dispenses one item's text. With an empty target the oldest buffered item goes
// first, pulling DefaultPullCount items when the buffer is empty. With a target the
// buffer is topped up to IdealBufferLen when at or below half of it, then sorted by
// normalized edit distance to target and the closest item is dispensed.
//
// The item's id is appended to the ledger before its text is returned. When that
// append fails Next returns a *PersistenceError and the item stays buffered.
func (d *Dispenser) Next(ctx context.Context, target string) (string, error) {
	if target == "" {
		if len(d.buffer) == 0 {
			if err := d.Pull(ctx, d.opts.DefaultPullCount); err != nil {
				return "", err
			}
		}
	} else {
		if len(d.buffer) <= d.opts.IdealBufferLen/2 {
			if err := d.Pull(ctx, d.opts.IdealBufferLen); err != nil {
				return "", err
			}
		}
		d.rank(target)
	}

	if len(d.buffer) == 0 {
		return "", ErrEmptyFeed
	}
	return d.dispense()
}

// rank stable-sorts the buffer by distance to target, scoring each item once.
func (d *Dispenser) rank(target string) {
	type scored struct {
		entry
		score float64
	}
	ranked := make([]scored, len(d.buffer))
	for i, e := range d.buffer {
		ranked[i] = scored{entry: e, score: d.scorer.NormalizedDistance(e.text, target)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return cmp.Compare(a.score, b.score) })
	for i := range ranked {
		d.buffer[i] = ranked[i].entry
	}
}

func (d *Dispenser) dispense() (string, error) {
	head := d.buffer[0]
	if err := d.ledger.Append(head.id); err != nil {
		return "", &PersistenceError{ID: head.id, Err: err}
	}

	d.buffer[0] = entry{}
	d.buffer = d.buffer[1:]
	delete(d.queued, head.id)
	d.seen[head.id] = struct{}{}
	return head.text, nil
}

// anchor is the id the next fetch continues from, per the feed's direction.
func (d *Dispenser) anchor() string {
	if d.client.Ascending() {
		return d.newest
	}
	return d.oldest
}

// track widens the known id range to include id.
func (d *Dispenser) track(id string) {
	if id == "" {
		return
	}
	if d.oldest == "" || d.client.Compare(id, d.oldest) < 0 {
		d.oldest = id
	}
	if d.newest == "" || d.client.Compare(id, d.newest) > 0 {
		d.newest = id
	}
}
