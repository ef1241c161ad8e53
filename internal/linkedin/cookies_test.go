package linkedin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestSaveLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedin_cookies.json")
	want := []Cookie{
		{Name: "li_at", Value: "secret", Domain: ".linkedin.com", Path: "/", Expiry: 1893456000, HTTPOnly: true, Secure: true, SameSite: "None"},
		{Name: "lang", Value: "v=2&lang=en-us", Domain: ".linkedin.com", Path: "/"},
	}
	if err := SaveCookies(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	got, err := LoadCookies(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestLoadCookies_SeleniumFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	raw := `[{"domain": ".www.linkedin.com", "expiry": 1893456000, "httpOnly": true, "name": "li_at", "path": "/", "sameSite": "None", "secure": true, "value": "AQED"}]`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	cookies, err := LoadCookies(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "li_at" || cookies[0].Expiry != 1893456000 {
		t.Errorf("unexpected cookies: %+v", cookies)
	}
}

func TestLoadSession_MissingFile(t *testing.T) {
	cookies, err := loadSession(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("expected missing session to be ignored, got %v", err)
	}
	if cookies != nil {
		t.Errorf("expected nil cookies, got %+v", cookies)
	}

	if _, err := LoadCookies(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadCookies_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCookies(path); err == nil {
		t.Fatal("expected error for malformed cookies, got nil")
	}
}

func TestHasSessionCookie(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		cookies []Cookie
		want    bool
	}{
		{"valid", []Cookie{{Name: "li_at", Value: "x", Expiry: now.Add(time.Hour).Unix()}}, true},
		{"session cookie without expiry", []Cookie{{Name: "li_at", Value: "x"}}, true},
		{"expired", []Cookie{{Name: "li_at", Value: "x", Expiry: now.Add(-time.Hour).Unix()}}, false},
		{"no auth cookie", []Cookie{{Name: "lang", Value: "en"}}, false},
		{"empty", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasSessionCookie(tc.cookies, now); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestToCookieParams(t *testing.T) {
	params := toCookieParams([]Cookie{
		{Name: "li_at", Value: "x", Expiry: 1893456000, SameSite: "Lax"},
	})
	if len(params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(params))
	}
	p := params[0]
	if p.Domain != ".linkedin.com" || p.Path != "/" {
		t.Errorf("expected default domain and path, got %q %q", p.Domain, p.Path)
	}
	if p.SameSite != network.CookieSameSiteLax {
		t.Errorf("expected Lax, got %q", p.SameSite)
	}
	if p.Expires == nil || p.Expires.Time().Unix() != 1893456000 {
		t.Errorf("unexpected expiry %v", p.Expires)
	}
}

func TestSessionActive(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.linkedin.com/jobs/", true},
		{"https://www.linkedin.com/login?session_redirect=%2Fjobs%2F", false},
		{"https://www.linkedin.com/authwall?trk=x", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := sessionActive(tc.url); got != tc.want {
			t.Errorf("sessionActive(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
