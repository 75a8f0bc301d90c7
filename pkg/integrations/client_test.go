package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/converge/pkg/cache"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "pom", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "pom", 0, nil)
	if client.cache == nil {
		t.Fatal("nil cache should fall back to a null cache")
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	client := NewClient(nil, "pom", 0, nil)
	data, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != "<project/>" {
		t.Errorf("Get() = %q", data)
	}
}

func TestClientRateLimit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	client := NewClient(nil, "pom", 0, nil)
	client.SetRateLimit(0.01) // one request, then one every 100s

	if _, err := client.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("first Get() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Get(ctx, server.URL); err == nil {
		t.Fatal("second Get() should be held back by the rate limit")
	}
	if requests != 1 {
		t.Errorf("server saw %d requests, want 1", requests)
	}

	client.SetRateLimit(0)
	if _, err := client.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("Get() after removing the limit: %v", err)
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client := NewClient(nil, "pom", 0, map[string]string{"Authorization": "default"})
	if _, err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"Authorization": "override"}); err != nil {
		t.Fatal(err)
	}
	if got != "override" {
		t.Errorf("Authorization = %q, want override", got)
	}
}

func TestClientGetStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   error
		retryable bool
	}{
		{"not found", http.StatusNotFound, ErrNotFound, false},
		{"server error", http.StatusBadGateway, ErrNetwork, true},
		{"rate limited", http.StatusTooManyRequests, ErrNetwork, true},
		{"forbidden", http.StatusForbidden, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewClient(nil, "pom", 0, nil).Get(context.Background(), server.URL)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if cache.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", cache.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestClientCached(t *testing.T) {
	ctx := context.Background()
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "pom", time.Hour, nil)

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	for range 2 {
		data, err := client.Cached(ctx, "k", false, fetch)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "payload" {
			t.Errorf("data = %q", data)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	if _, err := client.Cached(ctx, "k", true, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("refresh should bypass the cache, calls = %d", calls)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	ctx := context.Background()
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "pom", time.Hour, nil)

	_, err := client.Cached(ctx, "k", false, func() ([]byte, error) {
		return nil, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("failed fetch must not be cached")
	}
}

func TestRepositoryHost(t *testing.T) {
	tests := map[string]string{
		"https://repo1.maven.org/maven2":       "repo1.maven.org",
		"http://nexus.local:8081/repo/public/": "nexus.local:8081",
		"repo.example.com":                     "repo.example.com",
	}
	for in, want := range tests {
		if got := RepositoryHost(in); got != want {
			t.Errorf("RepositoryHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg/converge" {
		t.Errorf("DefaultCacheDir() = %q", dir)
	}
}

func TestNewHTTPClient(t *testing.T) {
	if c := NewHTTPClient(); c.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, httpTimeout)
	}
}
