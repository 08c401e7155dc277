package preview

import (
	"strings"
	"testing"
)

func TestRenderer_ThumbnailIsCached(t *testing.T) {
	reg := NewRegistry()
	ref := reg.Create("cat.png", encodePNG(t, 20, 20))
	r := NewRenderer(reg, 4)

	first, err := r.Thumbnail(ref, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 cached rendering, got %d", r.Len())
	}

	// Served from the cache even once the bytes are gone
	reg.Revoke(ref)
	second, err := r.Thumbnail(ref, 10, 20)
	if err != nil {
		t.Fatalf("expected cached rendering, got %v", err)
	}
	if first != second {
		t.Error("expected identical rendering from the cache")
	}

	if _, err := r.Thumbnail(ref, 12, 20); err == nil {
		t.Error("expected an error for an uncached width of a revoked ref")
	}
}

func TestRenderer_Forget(t *testing.T) {
	reg := NewRegistry()
	a := reg.Create("a.png", encodePNG(t, 8, 8))
	b := reg.Create("b.png", encodePNG(t, 8, 8))
	r := NewRenderer(reg, 0)

	for _, width := range []int{4, 6} {
		if _, err := r.Thumbnail(a, width, 8); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := r.Thumbnail(b, 4, 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 3 {
		t.Fatalf("expected 3 cached renderings, got %d", r.Len())
	}

	r.Forget(a)
	if r.Len() != 1 {
		t.Errorf("expected only b left, got %d entries", r.Len())
	}
	r.Forget()
	if r.Len() != 1 {
		t.Errorf("expected no-op for empty Forget, got %d entries", r.Len())
	}
}

func TestRenderer_Eviction(t *testing.T) {
	reg := NewRegistry()
	ref := reg.Create("a.png", encodePNG(t, 8, 8))
	r := NewRenderer(reg, 2)

	for _, width := range []int{2, 3, 4} {
		if _, err := r.Thumbnail(ref, width, 8); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if r.Len() != 2 {
		t.Errorf("expected cache capped at 2, got %d", r.Len())
	}
}

func TestRenderer_Undecodable(t *testing.T) {
	reg := NewRegistry()
	ref := reg.Create("notes.png", []byte("not an image"))
	r := NewRenderer(reg, 0)

	if _, err := r.Thumbnail(ref, 8, 8); err == nil {
		t.Fatal("expected decode error")
	}
	if r.Len() != 0 {
		t.Error("expected failures not to be cached")
	}
}

func TestRenderer_QRCode(t *testing.T) {
	r := NewRenderer(NewRegistry(), 0)

	qr, err := r.QRCode("http://localhost:1800/uploads/cat.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.ContainsAny(qr, "█▀▄") {
		t.Error("expected half block characters")
	}
	if strings.HasSuffix(qr, "\n") {
		t.Error("expected trailing newline trimmed")
	}

	lines := strings.Split(qr, "\n")
	for i, line := range lines[1:] {
		if len([]rune(line)) != len([]rune(lines[0])) {
			t.Errorf("row %d has width %d, want %d", i+1, len([]rune(line)), len([]rune(lines[0])))
		}
	}

	again, _ := r.QRCode("http://localhost:1800/uploads/cat.png")
	if again != qr || r.Len() != 1 {
		t.Error("expected the QR code to be cached")
	}
}
