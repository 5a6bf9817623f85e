package update

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/afero"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		// Basic comparisons
		{name: "1.0.0 < 1.0.1", a: "1.0.0", b: "1.0.1", want: -1},
		{name: "1.0.1 > 1.0.0", a: "1.0.1", b: "1.0.0", want: 1},
		{name: "1.0.0 == 1.0.0", a: "1.0.0", b: "1.0.0", want: 0},

		// With v prefix
		{name: "v1.0.0 < 1.0.1", a: "v1.0.0", b: "1.0.1", want: -1},
		{name: "1.0.0 < v1.0.1", a: "1.0.0", b: "v1.0.1", want: -1},
		{name: "v1.0.0 == v1.0.0", a: "v1.0.0", b: "v1.0.0", want: 0},

		// Minor and major version changes
		{name: "1.0.0 < 1.1.0", a: "1.0.0", b: "1.1.0", want: -1},
		{name: "1.0.0 < 2.0.0", a: "1.0.0", b: "2.0.0", want: -1},
		{name: "2.0.0 > 1.9.9", a: "2.0.0", b: "1.9.9", want: 1},

		// dev version handling
		{name: "dev > 1.0.0", a: "dev", b: "1.0.0", want: 1},
		{name: "1.0.0 < dev", a: "1.0.0", b: "dev", want: -1},
		{name: "dev > 999.999.999", a: "dev", b: "999.999.999", want: 1},

		// Pre-release versions (simplified - just check base version)
		{name: "1.0.0-beta < 1.0.1", a: "1.0.0-beta", b: "1.0.1", want: -1},
		{name: "1.0.0-beta == 1.0.0", a: "1.0.0-beta", b: "1.0.0", want: 0},

		// Different digit counts
		{name: "0.4.4 < 0.5.0", a: "0.4.4", b: "0.5.0", want: -1},
		{name: "0.10.0 > 0.9.0", a: "0.10.0", b: "0.9.0", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareVersions(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/var/cache/test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/var/cache/test", "ocg"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

const releaseURL = "https://api.example.com/releases/latest"

func newTestChecker(current string, now time.Time) (*Checker, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	return &Checker{
		URL:      releaseURL,
		Client:   &http.Client{Transport: mt},
		Fs:       afero.NewMemMapFs(),
		CacheDir: "/cache/ocg",
		Current:  current,
		Now:      func() time.Time { return now },
	}, mt
}

func TestChecker_Check(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, mt := newTestChecker("0.1.0", now)
	mt.RegisterResponder(http.MethodGet, releaseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"tag_name":"v0.2.0","html_url":"https://github.com/pthm/ocg/releases/v0.2.0"}`))

	info, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if info.LatestVersion != "0.2.0" {
		t.Errorf("LatestVersion = %q, want 0.2.0", info.LatestVersion)
	}
	if !info.UpdateAvailable {
		t.Error("UpdateAvailable = false, want true")
	}
	if info.ReleaseURL != "https://github.com/pthm/ocg/releases/v0.2.0" {
		t.Errorf("ReleaseURL = %q", info.ReleaseURL)
	}
	if !info.CheckedAt.Equal(now) {
		t.Errorf("CheckedAt = %v, want %v", info.CheckedAt, now)
	}
}

func TestChecker_CheckStatus(t *testing.T) {
	c, mt := newTestChecker("0.1.0", time.Now())
	mt.RegisterResponder(http.MethodGet, releaseURL, httpmock.NewStringResponder(http.StatusForbidden, "rate limited"))

	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("Check() error = nil, want status error")
	}
}

func TestChecker_CheckWithCache(t *testing.T) {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	c, mt := newTestChecker("0.1.0", start)
	mt.RegisterResponder(http.MethodGet, releaseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"tag_name":"v0.1.0"}`))

	info, err := c.CheckWithCache(context.Background())
	if err != nil {
		t.Fatalf("first CheckWithCache() error: %v", err)
	}
	if info.UpdateAvailable {
		t.Error("UpdateAvailable = true for the same version")
	}

	// Within the TTL the cached answer is reused with the current version.
	c.Current = "0.0.9"
	c.Now = func() time.Time { return start.Add(time.Hour) }
	info, err = c.CheckWithCache(context.Background())
	if err != nil {
		t.Fatalf("cached CheckWithCache() error: %v", err)
	}
	if !info.UpdateAvailable {
		t.Error("UpdateAvailable = false, want true against the cached release")
	}
	if got := mt.GetTotalCallCount(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}

	// After the TTL the release is fetched again.
	c.Now = func() time.Time { return start.Add(25 * time.Hour) }
	if _, err := c.CheckWithCache(context.Background()); err != nil {
		t.Fatalf("expired CheckWithCache() error: %v", err)
	}
	if got := mt.GetTotalCallCount(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}
