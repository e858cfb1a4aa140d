package linkedin

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Client is a browser-backed LinkedIn session. It drives a single page, so
// callers must serialize access (the engine's session registry does this).
// Client implements engine.Session.
type Client struct {
	opts    ClientOptions
	browser *rod.Browser
	page    *rod.Page
	authed  bool
}

// Compile-time interface check
var _ engine.Session = (*Client)(nil)

// NewClient launches a browser and opens the single working page
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	// Leakless is disabled to avoid AV false positives on some platforms
	l := launcher.New().Leakless(false).Headless(opts.Headless)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := (proto.EmulationSetUserAgentOverride{UserAgent: opts.UserAgent}).Call(page); err != nil {
			log.Printf("[LINKEDIN]: Failed to set user agent: %v", err)
		}
	}

	return &Client{opts: opts, browser: browser, page: page}, nil
}

// Factory returns an engine.SessionFactory that builds clients with the
// given options
func Factory(opts ClientOptions) engine.SessionFactory {
	return func(ctx context.Context) (engine.Session, error) {
		return NewClient(ctx, opts)
	}
}

// Close shuts down the browser
func (c *Client) Close() error {
	c.authed = false
	if c.browser == nil {
		return nil
	}
	if err := c.browser.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// navigate drives the working page to a URL and waits for it to load
func (c *Client) navigate(ctx context.Context, url string) (*rod.Page, error) {
	page := c.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.Timeout(c.navigateTimeout()).WaitLoad(); err != nil {
		return nil, fmt.Errorf("page load failed for %s: %w", url, err)
	}
	return page, nil
}

// requireAuth guards operations that need a logged-in session
func (c *Client) requireAuth() error {
	if !c.authed {
		return engine.ErrNotAuthenticated
	}
	return nil
}

func (c *Client) navigateTimeout() time.Duration {
	return time.Duration(c.opts.NavigateTimeoutMs) * time.Millisecond
}

func (c *Client) elementTimeout() time.Duration {
	return time.Duration(c.opts.ElementTimeoutMs) * time.Millisecond
}

// element finds a selector on the page within the element timeout
func (c *Client) element(page *rod.Page, selector string) (*rod.Element, error) {
	return page.Timeout(c.elementTimeout()).Element(selector)
}

// elementR finds an element matching a text regex within the element timeout
func (c *Client) elementR(page *rod.Page, selector, regex string) (*rod.Element, error) {
	return page.Timeout(c.elementTimeout()).ElementR(selector, regex)
}

// hasElement reports whether a selector exists, with a short timeout
func (c *Client) hasElement(page *rod.Page, selector string) bool {
	_, err := page.Timeout(2 * time.Second).Element(selector)
	return err == nil
}

// hasElementR reports whether an element matching a text regex exists
func (c *Client) hasElementR(page *rod.Page, selector, regex string) bool {
	_, err := page.Timeout(2 * time.Second).ElementR(selector, regex)
	return err == nil
}
