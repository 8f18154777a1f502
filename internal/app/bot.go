package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/okbot/internal/dispenser"
	"github.com/samvad-hq/okbot/internal/domain"
	"github.com/samvad-hq/okbot/internal/logger"
	"github.com/samvad-hq/okbot/internal/scheduler"
	"github.com/samvad-hq/okbot/pkg/publishers"
)

const (
	respondJob  = "respond"
	minWaitFrac = 0.1
)

// Options tunes the poll loop.
type Options struct {
	// Username identifies our own messages when picking a ranking target.
	Username string
	// Ranked replies are matched against the suitor's latest message.
	Ranked     bool
	DryRun     bool
	ReplyDelay time.Duration
	// PollInterval and PollJitter drive the sleep between cycles unless Schedule is set.
	PollInterval time.Duration
	PollJitter   float64
	Schedule     string
}

// Bot answers unreplied threads with texts from a ReplySource.
type Bot struct {
	site      SiteClient
	store     ConversationStore
	replies   ReplySource
	publisher EventPublisher
	opts      Options
	log       logger.Logger

	// normFloat is swapped in tests.
	normFloat func() float64
}

// NewBot wires a bot from its collaborators. store and publisher are optional.
func NewBot(site SiteClient, store ConversationStore, replies ReplySource, publisher EventPublisher, opts Options, log logger.Logger) (*Bot, error) {
	if site == nil {
		return nil, fmt.Errorf("bot requires a site client")
	}
	if replies == nil {
		return nil, fmt.Errorf("bot requires a reply source")
	}
	return &Bot{
		site:      site,
		store:     store,
		replies:   replies,
		publisher: publisher,
		opts:      opts,
		log:       logger.Ensure(log),
		normFloat: rand.NormFloat64,
	}, nil
}

// RespondOnce replies to every thread that is not marked replied and returns how many
// replies were sent. Feed exhaustion, ledger failures and reply failures end the cycle.
func (b *Bot) RespondOnce(ctx context.Context) (int, error) {
	threads, err := b.site.Threads(ctx)
	if err != nil {
		return 0, fmt.Errorf("list threads: %w", err)
	}

	pending := make([]domain.Thread, 0, len(threads))
	for _, t := range threads {
		if !t.Replied() {
			pending = append(pending, t)
		}
	}
	b.log.InfoObj("threads scanned", "bot_cycle", map[string]any{
		"threads":   len(threads),
		"unreplied": len(pending),
	})
	if len(pending) == 0 {
		return 0, nil
	}

	if err := b.replies.Pull(ctx, len(pending)); err != nil {
		return 0, fmt.Errorf("pull replies: %w", err)
	}

	sent := 0
	for _, thread := range pending {
		target := b.target(ctx, thread)

		content, err := b.replies.Next(ctx, target)
		if err != nil {
			return sent, fmt.Errorf("next reply for thread %s: %w", thread.ID, err)
		}
		if err := b.site.Reply(ctx, thread.ID, content); err != nil {
			return sent, err
		}
		sent++

		b.log.InfoObj("reply sent", "bot_reply", map[string]any{
			"thread_id": thread.ID,
			"user":      thread.User,
			"ranked":    target != "",
			"dry_run":   b.opts.DryRun,
		})
		b.publish(ctx, publishers.NewReplyEvent(thread, content, target, b.opts.DryRun))

		if err := sleep(ctx, b.opts.ReplyDelay); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// target scrapes and stores the conversation, returning the text to rank against.
// An empty string means unranked.
func (b *Bot) target(ctx context.Context, thread domain.Thread) string {
	msgs, err := b.site.ScrapeThread(ctx, thread.ID)
	if err != nil {
		b.log.WarnObj("thread scrape failed", "bot_scrape", map[string]any{
			"thread_id": thread.ID,
			"error":     err.Error(),
		})
	}
	if b.store != nil && len(msgs) > 0 {
		if _, err := b.store.SaveThread(ctx, thread.ID, msgs); err != nil {
			b.log.ErrorObj("thread persist failed", "bot_store", map[string]any{
				"thread_id": thread.ID,
				"error":     err.Error(),
			})
		}
	}

	if !b.opts.Ranked {
		return ""
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == b.opts.Username {
			continue
		}
		if text := plainText(msgs[i].Body); text != "" {
			return text
		}
	}
	return strings.TrimSpace(thread.Text)
}

func (b *Bot) publish(ctx context.Context, evt publishers.Event) {
	if b.publisher == nil {
		return
	}
	if _, err := b.publisher.Publish(ctx, evt); err != nil {
		b.log.WarnObj("reply event publish failed", "bot_publish", map[string]any{
			"thread_id": evt.ThreadID,
			"error":     err.Error(),
		})
	}
}

// Run logs in and polls until ctx is cancelled, either on the cron schedule or on a
// jittered interval.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.site.Login(ctx); err != nil {
		return err
	}

	if b.opts.Schedule != "" {
		return b.runScheduled(ctx)
	}

	b.log.InfoObj("poll loop starting", "bot_state", map[string]any{
		"poll_interval": b.opts.PollInterval.String(),
		"poll_jitter":   b.opts.PollJitter,
		"ranked":        b.opts.Ranked,
	})
	for {
		if err := b.cycle(ctx); err != nil && ctx.Err() == nil {
			b.logCycleError(err)
		}

		wait := b.nextWait()
		b.log.DebugObj("sleeping until next cycle", "bot_wait", wait.String())
		if err := sleep(ctx, wait); err != nil {
			b.log.InfoObj("poll loop exiting", "reason", err.Error())
			return nil
		}
	}
}

func (b *Bot) runScheduled(ctx context.Context) error {
	sched := scheduler.New(ctx, 0, b.log)
	if err := sched.AddJob(respondJob, b.opts.Schedule, b.cycle); err != nil {
		return err
	}
	sched.Start()
	state := map[string]any{"schedule": b.opts.Schedule}
	if next, ok := sched.Next(respondJob); ok {
		state["next_run"] = next.Format(time.RFC3339)
	}
	b.log.InfoObj("poll schedule started", "bot_state", state)

	<-ctx.Done()
	<-sched.Stop().Done()
	b.log.InfoObj("poll loop exiting", "reason", ctx.Err().Error())
	return nil
}

func (b *Bot) logCycleError(err error) {
	if errors.Is(err, dispenser.ErrEmptyFeed) {
		b.log.WarnObj("feed has no new items", "bot_cycle_error", err.Error())
		return
	}
	b.log.ErrorObj("poll cycle failed", "bot_cycle_error", err.Error())
}

// cycle runs one RespondOnce and parks the browser afterwards.
func (b *Bot) cycle(ctx context.Context) error {
	start := time.Now()
	sent, err := b.RespondOnce(ctx)
	b.log.InfoObj("poll cycle finished", "bot_cycle", map[string]any{
		"replies":    sent,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	if perr := b.site.Park(ctx); perr != nil && ctx.Err() == nil {
		b.log.WarnObj("park browser failed", "bot_park", perr.Error())
	}
	return err
}

// nextWait is PollInterval scaled by 1 + jitter*N(0,1), never below a tenth of it.
func (b *Bot) nextWait() time.Duration {
	base := float64(b.opts.PollInterval)
	wait := base * (1 + b.opts.PollJitter*b.normFloat())
	if floor := base * minWaitFrac; wait < floor {
		wait = floor
	}
	return time.Duration(wait)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// plainText strips markup from a scraped message body.
func plainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
