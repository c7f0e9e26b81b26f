package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// VariantCache keeps fetched CDN renditions on local disk, keyed by the
// digest of the variant URL. A miss always goes back to the CDN; the cache
// only short-circuits repeat fetches of the same rendition.
type VariantCache struct {
	root string
}

// NewVariantCache creates a cache rooted at root.
func NewVariantCache(root string) (*VariantCache, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("variant cache root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &VariantCache{root: abs}, nil
}

// Open returns a reader for the cached rendition of url, or ok=false on a
// miss.
func (c *VariantCache) Open(ctx context.Context, url string) (io.ReadCloser, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f, err := os.Open(c.pathForURL(url))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return f, true, nil
}

// Put stores the rendition bytes for url, writing through a temp file and
// renaming so readers never observe a partial object.
func (c *VariantCache) Put(ctx context.Context, url string, r io.Reader) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("variant cache is not configured")
	}
	if r == nil {
		return 0, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Join(c.root, "tmp"), "put-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, err
	}

	dst := c.pathForURL(url)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return 0, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return n, nil
		}
		cleanup()
		return 0, err
	}
	return n, nil
}

// Delete removes a cached rendition. Missing entries are ignored.
func (c *VariantCache) Delete(ctx context.Context, url string) error {
	if c == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(c.pathForURL(url)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *VariantCache) pathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	digest := hex.EncodeToString(sum[:])
	return filepath.Join(c.root, "sha256", digest[0:2], digest[2:4], digest)
}
