package cache

import (
	"context"
	"errors"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Compressed stores entries zstd-compressed in inner. POM documents are
// verbose XML and shrink several times over.
//
// Entries in inner that do not decode, such as ones written without
// compression, read as misses. Closing the returned cache closes inner.
func Compressed(inner Cache) (Cache, error) {
	if inner == nil {
		inner = NewNullCache()
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &compressed{inner: inner, enc: enc, dec: dec}, nil
}

type compressed struct {
	inner Cache
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func (c *compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (c *compressed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, c.enc.EncodeAll(data, nil), ttl)
}

func (c *compressed) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *compressed) Close() error {
	c.dec.Close()
	return errors.Join(c.enc.Close(), c.inner.Close())
}
