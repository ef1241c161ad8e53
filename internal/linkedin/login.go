package linkedin

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// LoginResult reports what a login run saved.
type LoginResult struct {
	Cookies  int
	Verified bool
	FinalURL string
}

// Login opens a visible browser on the LinkedIn login page and waits for the
// user to sign in. Once wait returns, the browser cookies are written to
// opts.CookiesFile and the session is checked by loading the jobs page: a
// redirect back to a login URL means the session did not stick.
func Login(ctx context.Context, baseURL string, opts BrowserOptions, wait func(context.Context) error) (LoginResult, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base := strings.TrimRight(baseURL, "/")
	opts.Headless = false

	tab, closeBrowser, err := newBrowser(ctx, opts)
	if err != nil {
		return LoginResult{}, err
	}
	defer closeBrowser()

	if err := chromedp.Run(tab, chromedp.Navigate(base+"/login")); err != nil {
		return LoginResult{}, fmt.Errorf("opening login page: %w", err)
	}
	if err := wait(tab); err != nil {
		return LoginResult{}, err
	}

	var saved []Cookie
	err = chromedp.Run(tab, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().WithURLs([]string{base}).Do(ctx)
		if err != nil {
			return err
		}
		saved = fromNetworkCookies(cookies)
		return nil
	}))
	if err != nil {
		return LoginResult{}, fmt.Errorf("reading browser cookies: %w", err)
	}
	if err := SaveCookies(opts.CookiesFile, saved); err != nil {
		return LoginResult{}, err
	}

	result := LoginResult{Cookies: len(saved)}
	err = chromedp.Run(tab,
		chromedp.Navigate(base+"/jobs/"),
		chromedp.Sleep(opts.PageLoadDelay),
		chromedp.Location(&result.FinalURL),
	)
	if err != nil {
		return result, fmt.Errorf("verifying session: %w", err)
	}
	result.Verified = sessionActive(result.FinalURL)
	return result, nil
}

func sessionActive(finalURL string) bool {
	u := strings.ToLower(finalURL)
	return u != "" && !strings.Contains(u, "login") && !strings.Contains(u, "authwall")
}
