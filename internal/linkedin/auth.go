package linkedin

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const cookieDomain = ".linkedin.com"

// AuthenticateWithCookies installs a raw "name=value; name2=value2" cookie
// bundle into the browser and verifies the authenticated feed is reachable
func (c *Client) AuthenticateWithCookies(ctx context.Context, bundle string) error {
	cookies := parseCookieBundle(bundle)
	if len(cookies) == 0 {
		return fmt.Errorf("cookie bundle contained no cookies: %w", engine.ErrAuthenticationFailed)
	}

	page := c.page.Context(ctx)
	for _, cookie := range cookies {
		_, err := proto.NetworkSetCookie{
			Domain: cookieDomain,
			Name:   cookie.name,
			Value:  cookie.value,
			Path:   "/",
			Secure: true,
		}.Call(page)
		if err != nil {
			return fmt.Errorf("failed to set cookie '%s': %w", cookie.name, err)
		}
	}

	if err := c.verifyLoggedIn(ctx); err != nil {
		return err
	}

	c.authed = true
	log.Printf("[LINKEDIN]: Authenticated with cookie bundle (%d cookies)", len(cookies))
	return nil
}

// AuthenticateWithCredentials performs a form login and verifies the
// authenticated feed is reachable
func (c *Client) AuthenticateWithCredentials(ctx context.Context, email, password string) error {
	page, err := c.navigate(ctx, c.opts.BaseURL+"login")
	if err != nil {
		return err
	}

	username, err := c.element(page, "input#username")
	if err != nil {
		return fmt.Errorf("username input not found: %w", engine.ErrAuthenticationFailed)
	}
	if err := username.Input(email); err != nil {
		return fmt.Errorf("failed to input email: %w", err)
	}

	passwordInput, err := c.element(page, "input#password")
	if err != nil {
		return fmt.Errorf("password input not found: %w", engine.ErrAuthenticationFailed)
	}
	if err := passwordInput.Input(password); err != nil {
		return fmt.Errorf("failed to input password: %w", err)
	}

	submit, err := c.element(page, "button[type='submit']")
	if err != nil {
		return fmt.Errorf("submit button not found: %w", engine.ErrAuthenticationFailed)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click submit: %w", err)
	}

	if err := page.Timeout(c.navigateTimeout()).WaitLoad(); err != nil {
		return fmt.Errorf("post-login load failed: %w", err)
	}
	time.Sleep(2 * time.Second)

	if err := c.verifyLoggedIn(ctx); err != nil {
		return err
	}

	c.authed = true
	log.Printf("[LINKEDIN]: Authenticated with credentials for '%s'", email)
	return nil
}

// verifyLoggedIn navigates to the feed and checks for an authenticated
// surface. Failure means the cookies or credentials were rejected.
func (c *Client) verifyLoggedIn(ctx context.Context) error {
	page, err := c.navigate(ctx, c.opts.BaseURL+"feed/")
	if err != nil {
		return err
	}

	if loggedIn(page) {
		return nil
	}
	return engine.ErrAuthenticationFailed
}

// loggedIn checks for markers that only appear on an authenticated page
func loggedIn(page *rod.Page) bool {
	if info, err := page.Info(); err == nil {
		if strings.Contains(info.URL, "/feed") {
			return true
		}
		if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "/checkpoint") {
			return false
		}
	}

	selectors := []string{
		"nav.global-nav",
		"a[href*='/feed/']",
		"input[placeholder*='Search']",
	}
	for _, selector := range selectors {
		if _, err := page.Timeout(3 * time.Second).Element(selector); err == nil {
			return true
		}
	}
	return false
}

type cookiePair struct {
	name  string
	value string
}

// parseCookieBundle splits a raw "name=value; name2=value2" header-style
// bundle into cookie pairs. Malformed segments are skipped.
func parseCookieBundle(bundle string) []cookiePair {
	cookies := []cookiePair{}
	for _, segment := range strings.Split(bundle, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name, value, found := strings.Cut(segment, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			continue
		}
		cookies = append(cookies, cookiePair{name: name, value: strings.TrimSpace(value)})
	}
	return cookies
}
