package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const fileExt = ".json.zst"

// File persists one zstd-compressed JSON document per key under a directory.
// Writes go through a temporary file and a rename, so concurrent writers never
// leave a torn entry behind and the last completed write wins.
type File[T any] struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFile creates the cache directory if needed and returns a file cache rooted there.
func NewFile[T any](dir string) (*File[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &File[T]{dir: dir, encoder: enc, decoder: dec}, nil
}

// Read loads the value stored under key. A missing entry is not an error.
func (c *File[T]) Read(_ context.Context, key string) (T, bool, error) {
	var zero T

	compressed, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("read cache entry %q: %w", key, err)
	}

	data, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return zero, false, fmt.Errorf("decompress cache entry %q: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return v, true, nil
}

// Write stores value under key.
func (c *File[T]) Write(_ context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	compressed := c.encoder.EncodeAll(data, nil)

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close cache entry %q: %w", key, err)
	}
	if err := os.Rename(tmpName, c.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit cache entry %q: %w", key, err)
	}
	return nil
}

// Close releases the zstd encoder and decoder.
func (c *File[T]) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}

func (c *File[T]) path(key string) string {
	return filepath.Join(c.dir, sanitize(key)+fileExt)
}

// sanitize maps a cache key to a safe file name.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
