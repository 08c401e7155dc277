package preview

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/skip2/go-qrcode"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
)

const defaultRenderCacheSize = 64

// Resolver returns the bytes behind a live preview reference
type Resolver interface {
	Resolve(ref domain.PreviewRef) ([]byte, bool)
}

// Renderer renders thumbnails and QR codes and keeps the results in an LRU
// so resizing the terminal or redrawing a view does not decode again.
type Renderer struct {
	resolver Resolver
	cache    *lru.Cache[string, string]
}

// NewRenderer creates a renderer over resolver. size <= 0 uses a default.
func NewRenderer(resolver Resolver, size int) *Renderer {
	if size <= 0 {
		size = defaultRenderCacheSize
	}
	// lru.New only fails on a non-positive size
	cache, _ := lru.New[string, string](size)
	return &Renderer{
		resolver: resolver,
		cache:    cache,
	}
}

// Thumbnail renders the image behind ref at width columns
func (r *Renderer) Thumbnail(ref domain.PreviewRef, width, maxRows int) (string, error) {
	key := fmt.Sprintf("%s|%d|%d", ref, width, maxRows)
	if s, ok := r.cache.Get(key); ok {
		return s, nil
	}

	data, ok := r.resolver.Resolve(ref)
	if !ok {
		return "", fmt.Errorf("preview %s is no longer available", ref)
	}
	s, err := Thumbnail(data, width, maxRows)
	if err != nil {
		return "", err
	}

	r.cache.Add(key, s)
	return s, nil
}

// QRCode renders text as a QR code made of half blocks
func (r *Renderer) QRCode(text string) (string, error) {
	key := "qr|" + text
	if s, ok := r.cache.Get(key); ok {
		return s, nil
	}

	code, err := qrcode.New(text, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	s := strings.TrimRight(code.ToSmallString(false), "\n")

	r.cache.Add(key, s)
	return s, nil
}

// Forget drops every cached rendering of refs
func (r *Renderer) Forget(refs ...domain.PreviewRef) {
	if len(refs) == 0 {
		return
	}
	for _, key := range r.cache.Keys() {
		for _, ref := range refs {
			if strings.HasPrefix(key, string(ref)+"|") {
				r.cache.Remove(key)
				break
			}
		}
	}
}

// Len returns the number of cached renderings
func (r *Renderer) Len() int {
	return r.cache.Len()
}
