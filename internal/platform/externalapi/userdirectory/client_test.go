package userdirectory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company_backend/internal/shared/ratelimiter"
)

// newDirectoryServer は known に含まれるIDだけを 200 で返すテスト用サーバーを起動します。
func newDirectoryServer(t *testing.T, known map[string]bool, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		id, ok := strings.CutPrefix(r.URL.Path, "/users/")
		if !ok || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if id == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !known[id] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":` + id + `}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	cfg := Config{BaseURL: "https://users.test", Timeout: time.Second}
	c := NewClient(cfg, &http.Client{})

	require.NotNil(t, c)
	assert.Equal(t, cfg, c.cfg)
	assert.IsType(t, ratelimiter.Unlimited{}, c.limiter)

	limited := NewClient(Config{BaseURL: "https://users.test", RateLimit: 60}, &http.Client{})
	assert.IsType(t, &ratelimiter.RateLimiter{}, limited.limiter)
}

// TestNewClient_RateLimitIsPerSecond は RateLimit が1秒あたりの回数として適用されることを検証します。
func TestNewClient_RateLimitIsPerSecond(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{BaseURL: "https://users.test", RateLimit: 10}, &http.Client{})

	rl, ok := c.limiter.(*ratelimiter.RateLimiter)
	require.True(t, ok)
	assert.InDelta(t, 10.0, rl.PerSecond(), 1e-9)
}

func TestClient_Missing_RateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := newDirectoryServer(t, map[string]bool{"1": true}, &calls)
	c := NewClient(Config{BaseURL: server.URL, RateLimit: 1}, server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Missing(ctx, []uint{1, 2})
	assert.Error(t, err, "second lookup must wait beyond the deadline")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Missing(t *testing.T) {
	t.Parallel()

	server := newDirectoryServer(t, map[string]bool{"1": true, "2": true}, nil)
	c := NewClient(Config{BaseURL: server.URL}, server.Client())

	tests := []struct {
		name string
		ids  []uint
		want []uint
	}{
		{name: "all exist", ids: []uint{1, 2}, want: nil},
		{name: "missing ones in input order", ids: []uint{3, 1, 4}, want: []uint{3, 4}},
		{name: "no ids", ids: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.Missing(context.Background(), tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Missing_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := newDirectoryServer(t, map[string]bool{"1": true}, &calls)
	c := NewClient(Config{BaseURL: server.URL}, server.Client())

	got, err := c.Missing(context.Background(), []uint{500, 1})
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
	assert.Equal(t, int32(1), calls.Load(), "lookup must stop at the first error")
}

func TestClient_Missing_ContextCanceled(t *testing.T) {
	t.Parallel()

	server := newDirectoryServer(t, map[string]bool{"1": true}, nil)
	c := NewClient(Config{BaseURL: server.URL}, server.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Missing(ctx, []uint{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		timeout     string
		rateLimit   string
		wantURL     string
		wantTimeout time.Duration
		wantLimit   int
	}{
		{name: "defaults", wantTimeout: 5 * time.Second},
		{name: "trailing slash trimmed", url: "http://users.test/api/", wantURL: "http://users.test/api", wantTimeout: 5 * time.Second},
		{name: "custom timeout", url: "http://users.test", timeout: "750ms", wantURL: "http://users.test", wantTimeout: 750 * time.Millisecond},
		{name: "invalid timeout falls back", timeout: "fast", wantTimeout: 5 * time.Second},
		{name: "rate limit", rateLimit: "120", wantTimeout: 5 * time.Second, wantLimit: 120},
		{name: "invalid rate limit is ignored", rateLimit: "-3", wantTimeout: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("USER_DIRECTORY_URL", tt.url)
			t.Setenv("USER_DIRECTORY_TIMEOUT", tt.timeout)
			t.Setenv("USER_DIRECTORY_RATE_LIMIT", tt.rateLimit)

			cfg := LoadConfig()
			assert.Equal(t, tt.wantURL, cfg.BaseURL)
			assert.Equal(t, tt.wantTimeout, cfg.Timeout)
			assert.Equal(t, tt.wantLimit, cfg.RateLimit)
		})
	}
}
