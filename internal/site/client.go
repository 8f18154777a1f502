// Package site drives the dating site's web UI through a browser session.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/samvad-hq/okbot/internal/domain"
	"github.com/samvad-hq/okbot/internal/logger"
)

// ErrNotLoggedIn is returned by page actions attempted before Login succeeded.
var ErrNotLoggedIn = errors.New("not logged in")

const (
	selUser       = "#user"
	selPass       = "#pass"
	selMessageBox = "#message_text"
	selSend       = "#send_button a"
	selCollapse   = "li#collapse"
	neutralPage   = "about:blank"
	welcomeTitle  = "Welcome"
)

// Options configures the site client.
type Options struct {
	BaseURL     string
	Username    string
	Password    string
	PageTimeout time.Duration
	DryRun      bool
}

// Client performs the site's page flows inside a browser context.
type Client struct {
	browserCtx context.Context
	opts       Options
	log        logger.Logger
	loggedIn   bool
}

// New returns a client bound to browserCtx (see browser.Session.Context).
func New(browserCtx context.Context, opts Options, log logger.Logger) *Client {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 30 * time.Second
	}
	return &Client{browserCtx: browserCtx, opts: opts, log: logger.Ensure(log)}
}

// run executes actions in the browser with the page timeout, cancelled early when ctx is.
func (c *Client) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.browserCtx, c.opts.PageTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Login submits the login form and waits for the welcome page.
func (c *Client) Login(ctx context.Context) error {
	c.log.InfoObj("logging in", "site_login", map[string]any{"username": c.opts.Username})

	var ready bool
	var title string
	err := c.run(ctx,
		chromedp.Navigate(c.opts.BaseURL+"/login"),
		chromedp.WaitVisible(selUser, chromedp.ByQuery),
		chromedp.SendKeys(selUser, c.opts.Username, chromedp.ByQuery),
		chromedp.SendKeys(selPass, c.opts.Password+kb.Enter, chromedp.ByQuery),
		chromedp.Poll(fmt.Sprintf("document.title.indexOf(%q) >= 0", welcomeTitle), &ready, chromedp.WithPollingInterval(time.Second)),
		chromedp.Title(&title),
	)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.loggedIn = true
	c.log.InfoObj("logged in", "site_login", map[string]any{"title": title})
	return nil
}

// Threads lists the conversations on the messages page, one per user.
func (c *Client) Threads(ctx context.Context) ([]domain.Thread, error) {
	if !c.loggedIn {
		return nil, ErrNotLoggedIn
	}

	var page string
	if err := c.run(ctx,
		chromedp.Navigate(c.opts.BaseURL+"/messages"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	threads, err := parseThreads(page, c.log)
	if err != nil {
		return nil, err
	}
	return uniqueByUser(threads), nil
}

// Reply types content into the thread's message box and sends it unless DryRun is set.
func (c *Client) Reply(ctx context.Context, threadID, content string) error {
	if !c.loggedIn {
		return ErrNotLoggedIn
	}

	actions := []chromedp.Action{
		chromedp.Navigate(c.threadURL(threadID)),
		chromedp.WaitVisible(selMessageBox, chromedp.ByQuery),
		chromedp.SendKeys(selMessageBox, content, chromedp.ByQuery),
	}
	if !c.opts.DryRun {
		actions = append(actions, chromedp.Click(selSend, chromedp.ByQuery))
	}
	if err := c.run(ctx, actions...); err != nil {
		return fmt.Errorf("reply to thread %s: %w", threadID, err)
	}
	return nil
}

// ScrapeThread opens a thread, expands collapsed history and returns its messages.
func (c *Client) ScrapeThread(ctx context.Context, threadID string) ([]domain.Message, error) {
	if !c.loggedIn {
		return nil, ErrNotLoggedIn
	}

	var collapse []*cdp.Node
	if err := c.run(ctx,
		chromedp.Navigate(c.threadURL(threadID)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Nodes(selCollapse, &collapse, chromedp.ByQuery, chromedp.AtLeast(0)),
	); err != nil {
		return nil, fmt.Errorf("open thread %s: %w", threadID, err)
	}

	var page string
	actions := []chromedp.Action{}
	if len(collapse) > 0 {
		actions = append(actions, chromedp.MouseClickNode(collapse[0]), chromedp.Sleep(500*time.Millisecond))
	}
	actions = append(actions, chromedp.OuterHTML("html", &page, chromedp.ByQuery))
	if err := c.run(ctx, actions...); err != nil {
		return nil, fmt.Errorf("scrape thread %s: %w", threadID, err)
	}
	return parseThreadMessages(page)
}

// Park navigates away from the site between poll cycles.
func (c *Client) Park(ctx context.Context) error {
	return c.run(ctx, chromedp.Navigate(neutralPage))
}

func (c *Client) threadURL(threadID string) string {
	q := url.Values{}
	q.Set("readmsg", "true")
	q.Set("threadid", threadID)
	q.Set("folder", "1")
	return c.opts.BaseURL + "/messages?" + q.Encode()
}
