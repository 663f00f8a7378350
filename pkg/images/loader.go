// Package images decodes the bitmaps referenced by image views.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrBadDataURI is returned for data URIs that are not base64 images.
var ErrBadDataURI = errors.New("invalid image data URI")

// Cache loads images once per source. Relative paths resolve against the
// base directory. Safe for concurrent use.
type Cache struct {
	base   string
	mu     sync.RWMutex
	images map[string]image.Image
}

func NewCache(baseDir string) *Cache {
	return &Cache{base: baseDir, images: make(map[string]image.Image)}
}

// Load decodes the image at src, a file path or a base64 data URI.
func (c *Cache) Load(src string) (image.Image, error) {
	c.mu.RLock()
	img, ok := c.images[src]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	var err error
	if IsDataURI(src) {
		img, err = decodeDataURI(src)
	} else {
		img, err = c.decodeFile(src)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[src] = img
	c.mu.Unlock()
	return img, nil
}

// Dimensions returns the intrinsic size of the image at src.
func (c *Cache) Dimensions(src string) (width, height float64, err error) {
	img, err := c.Load(src)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (c *Cache) decodeFile(src string) (image.Image, error) {
	path := src
	if !filepath.IsAbs(path) && c.base != "" {
		path = filepath.Join(c.base, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image %q: %w", src, err)
	}
	return img, nil
}

func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// decodeDataURI accepts "data:image/<type>;base64,<payload>".
func decodeDataURI(uri string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrBadDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDataURI, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDataURI, err)
	}
	return img, nil
}
