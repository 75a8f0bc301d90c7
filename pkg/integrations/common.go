package integrations

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/converge/pkg/cache"
)

const (
	httpTimeout = 30 * time.Second
	maxBodySize = 16 << 20
)

var (
	// ErrNotFound is returned when an artifact or resource doesn't exist in the repository.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for repository requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// DefaultCacheDir returns the directory used by the file cache:
// $XDG_CACHE_HOME/converge, falling back to ~/.cache/converge.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "converge"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "converge"), nil
}

// NewCache opens the cache backend described by url. An empty url selects
// the file cache in [DefaultCacheDir]; redis:// and rediss:// URLs select
// a [cache.RedisCache]. Entries are stored compressed in either backend.
func NewCache(url string) (cache.Cache, error) {
	var (
		backend cache.Cache
		err     error
	)
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		backend, err = cache.NewRedisCache(url)
	} else {
		var dir string
		if dir, err = DefaultCacheDir(); err == nil {
			backend, err = cache.NewFileCache(dir)
		}
	}
	if err != nil {
		return nil, err
	}
	c, err := cache.Compressed(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

// RepositoryHost returns the host part of a repository URL, used to
// namespace cache entries per repository.
func RepositoryHost(repo string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(repo, "https://"), "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
