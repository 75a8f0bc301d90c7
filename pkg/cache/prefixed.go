package cache

import (
	"context"
	"time"
)

// Prefixed scopes a Cache to a key namespace. Every key passed to the
// returned cache is prepended with prefix before reaching inner.
//
//	central := cache.Prefixed(c, "repo1.maven.org:")
//	nexus := cache.Prefixed(c, "nexus.internal:")
//
// Closing a prefixed cache closes inner.
func Prefixed(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Cache
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.inner.Close() }
