package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/okbot/internal/browser"
	"github.com/samvad-hq/okbot/internal/config"
	"github.com/samvad-hq/okbot/internal/dispenser"
	"github.com/samvad-hq/okbot/internal/logger"
	"github.com/samvad-hq/okbot/internal/sanitize"
	"github.com/samvad-hq/okbot/internal/similarity"
	"github.com/samvad-hq/okbot/internal/site"
	"github.com/samvad-hq/okbot/internal/storage"
	"github.com/samvad-hq/okbot/internal/store"
	"github.com/samvad-hq/okbot/pkg/feeds"
	"github.com/samvad-hq/okbot/pkg/httpclient"
	"github.com/samvad-hq/okbot/pkg/publishers"
)

// Runtime is a fully wired bot plus the resources it holds open.
type Runtime struct {
	Bot *Bot

	closers []func() error
}

// Close releases everything Build opened, in reverse order.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Runtime) onClose(fn func() error) { r.closers = append(r.closers, fn) }

// Build wires the feed, ledger, dispenser, store, publishers and browser from cfg.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	rt := &Runtime{}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	replies, err := buildDispenser(cfg, log, rt)
	if err != nil {
		return nil, err
	}

	convStore, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open conversation store: %w", err)
	}
	rt.onClose(convStore.Close)

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rt.onClose(fanout.Close)

	sess, err := browser.Start(ctx, browser.Config{Headless: cfg.Headless})
	if err != nil {
		return nil, err
	}
	rt.onClose(func() error { sess.Close(); return nil })

	siteClient := site.New(sess.Context(), site.Options{
		BaseURL:     cfg.SiteBaseURL,
		Username:    cfg.SiteUsername,
		Password:    cfg.SitePassword,
		PageTimeout: cfg.PageTimeout,
		DryRun:      cfg.DryRun,
	}, log)

	bot, err := NewBot(siteClient, convStore, replies, fanout, Options{
		Username:     cfg.SiteUsername,
		Ranked:       cfg.RankedReplies,
		DryRun:       cfg.DryRun,
		ReplyDelay:   cfg.ReplyDelay,
		PollInterval: cfg.PollInterval,
		PollJitter:   cfg.PollJitter,
		Schedule:     cfg.PollSchedule,
	}, log)
	if err != nil {
		return nil, err
	}
	rt.Bot = bot

	ok = true
	return rt, nil
}

func buildDispenser(cfg *config.Config, log logger.Logger, rt *Runtime) (*dispenser.Dispenser, error) {
	sources, err := feeds.LoadSources(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feed sources: %w", err)
	}
	src, err := sources.Select(cfg.FeedSource)
	if err != nil {
		return nil, err
	}

	hc := httpclient.New(httpclient.Options{
		Timeout:    src.Timeout(),
		RetryCount: 2,
		UserAgent:  feeds.ConfigString(src, feeds.ConfigUserAgentKey, ""),
	})
	client, err := feeds.DefaultRegistry().ClientFor(src, hc)
	if err != nil {
		return nil, fmt.Errorf("build feed client: %w", err)
	}
	log.InfoObj("feed source selected", "feed_source", map[string]any{"id": src.ID, "type": src.Type})

	ledger, err := storage.NewLedger(cfg.LedgerType, cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("open seen-id ledger: %w", err)
	}
	rt.onClose(ledger.Close)

	return dispenser.New(client, ledger, sanitize.New(), similarity.NewScorer(), dispenser.Options{
		DefaultPullCount: cfg.PullCount,
		IdealBufferLen:   cfg.IdealBufferLen,
	}, log)
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	ids := make([]string, 0, len(enabled))
	for _, p := range enabled {
		ids = append(ids, p.ID)
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})
	return publishers.NewFanout(pubs), nil
}
