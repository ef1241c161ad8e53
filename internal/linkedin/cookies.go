package linkedin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// Cookie is one entry of the saved session file. The JSON layout matches the
// cookie dumps produced by Selenium so existing session files keep working.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Expiry   int64  `json:"expiry,omitempty"`
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite,omitempty"`
}

// LoadCookies reads a session file. A missing file returns an error that
// satisfies errors.Is(err, os.ErrNotExist).
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing cookies %s: %w", path, err)
	}
	return cookies, nil
}

// SaveCookies writes the session file with owner-only permissions.
func SaveCookies(path string, cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing cookies: %w", err)
	}
	return nil
}

// loadSession returns the cookies at path, or nil when there is no session
// file yet.
func loadSession(path string) ([]Cookie, error) {
	if path == "" {
		return nil, nil
	}
	cookies, err := LoadCookies(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return cookies, err
}

// hasSessionCookie reports whether the li_at auth cookie is present and not
// expired.
func hasSessionCookie(cookies []Cookie, now time.Time) bool {
	for _, c := range cookies {
		if c.Name != "li_at" || c.Value == "" {
			continue
		}
		if c.Expiry == 0 || time.Unix(c.Expiry, 0).After(now) {
			return true
		}
	}
	return false
}

func toCookieParams(cookies []Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if p.Domain == "" {
			p.Domain = ".linkedin.com"
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Expiry > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(c.Expiry, 0))
			p.Expires = &exp
		}
		switch strings.ToLower(c.SameSite) {
		case "strict":
			p.SameSite = network.CookieSameSiteStrict
		case "lax":
			p.SameSite = network.CookieSameSiteLax
		case "none":
			p.SameSite = network.CookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}

func fromNetworkCookies(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
		if !c.Session && c.Expires > 0 {
			cookie.Expiry = int64(c.Expires)
		}
		out = append(out, cookie)
	}
	return out
}
