package md2html

import (
	"bytes"
	"context"
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
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageSize is the pixel size of a decoded image header.
type ImageSize struct {
	Width  int
	Height int
}

type sizeResolver func(dest string) (cacheKey string, loader func() (ImageSize, error), err error)

// imageProber reads image headers to fill in width and height attributes.
// Results, including failures, are cached by resolved path or URL.
type imageProber struct {
	mu        sync.Mutex
	baseDir   string
	fetcher   Fetcher
	cache     map[string]ImageSize
	failed    map[string]error
	resolvers map[string]sizeResolver
}

func newImageProber(fetcher Fetcher) *imageProber {
	p := &imageProber{
		fetcher: fetcher,
		cache:   make(map[string]ImageSize),
		failed:  make(map[string]error),
	}
	p.resolvers = map[string]sizeResolver{
		"":      p.resolveLocal,
		"file":  p.resolveLocal,
		"http":  p.resolveRemote,
		"https": p.resolveRemote,
	}
	return p
}

// Probe returns the size of the image at dest. Relative paths are resolved
// against baseDir.
func (p *imageProber) Probe(dest, baseDir string) (ImageSize, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return ImageSize{}, errors.New("md2html: empty image destination")
	}
	if strings.HasPrefix(dest, "data:") {
		return ImageSize{}, fmt.Errorf("md2html: unsupported image destination: %.32s", dest)
	}
	scheme := ""
	if idx := strings.Index(dest, "://"); idx != -1 {
		scheme = strings.ToLower(dest[:idx])
	}
	resolver, ok := p.resolvers[scheme]
	if !ok {
		return ImageSize{}, fmt.Errorf("md2html: unsupported image scheme: %s", scheme)
	}
	p.mu.Lock()
	p.baseDir = baseDir
	key, loader, err := resolver(dest)
	if err != nil {
		p.mu.Unlock()
		return ImageSize{}, err
	}
	if size, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return size, nil
	}
	if err, ok := p.failed[key]; ok {
		p.mu.Unlock()
		return ImageSize{}, err
	}
	p.mu.Unlock()

	size, err := loader()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed[key] = err
		return ImageSize{}, err
	}
	p.cache[key] = size
	return size, nil
}

func (p *imageProber) resolveLocal(dest string) (string, func() (ImageSize, error), error) {
	path := strings.TrimPrefix(dest, "file://")
	if !filepath.IsAbs(path) {
		if base := strings.TrimSpace(p.baseDir); base != "" {
			path = filepath.Join(base, path)
		}
	}
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		if abs, err := filepath.Abs(cleaned); err == nil {
			cleaned = abs
		}
	}
	loader := func() (ImageSize, error) {
		f, err := os.Open(cleaned)
		if err != nil {
			return ImageSize{}, err
		}
		defer f.Close()
		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			return ImageSize{}, fmt.Errorf("md2html: decoding image %s: %w", cleaned, err)
		}
		return ImageSize{Width: cfg.Width, Height: cfg.Height}, nil
	}
	return cleaned, loader, nil
}

func (p *imageProber) resolveRemote(dest string) (string, func() (ImageSize, error), error) {
	if p.fetcher == nil {
		return "", nil, fmt.Errorf("md2html: no fetcher for %s", dest)
	}
	loader := func() (ImageSize, error) {
		body, err := p.fetcher.Fetch(context.Background(), dest)
		if err != nil {
			return ImageSize{}, err
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
		if err != nil {
			return ImageSize{}, fmt.Errorf("md2html: decoding image %s: %w", dest, err)
		}
		return ImageSize{Width: cfg.Width, Height: cfg.Height}, nil
	}
	return dest, loader, nil
}
