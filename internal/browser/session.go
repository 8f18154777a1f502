package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Session is one running browser. All page actions share its context so cookies survive
// between poll cycles.
type Session struct {
	ctx           context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
}

// Config controls how the browser is launched.
type Config struct {
	Headless  bool
	UserAgent string
}

// Start launches the browser. The returned session must be closed.
func Start(parent context.Context, cfg Config) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, Options(cfg.Headless, cfg.UserAgent)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{ctx: browserCtx, allocCancel: allocCancel, browserCancel: browserCancel}, nil
}

// Context returns the browser context actions must run in.
func (s *Session) Context() context.Context { return s.ctx }

// Close shuts the browser down.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.browserCancel()
	s.allocCancel()
}
