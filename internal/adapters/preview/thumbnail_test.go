package preview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnail_Dimensions(t *testing.T) {
	out, err := Thumbnail(encodePNG(t, 20, 20), 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows for a square image 10 cells wide, got %d", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, halfBlock); n != 10 {
			t.Errorf("row %d: expected 10 cells, got %d", i, n)
		}
	}
}

func TestThumbnail_RowCap(t *testing.T) {
	out, err := Thumbnail(encodePNG(t, 10, 200), 40, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows := len(strings.Split(out, "\n")); rows != 8 {
		t.Errorf("expected rows capped at 8, got %d", rows)
	}
}

func TestThumbnail_Undecodable(t *testing.T) {
	_, err := Thumbnail([]byte("<svg></svg>"), 10, 10)
	if !errors.Is(err, ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, width, maxRows int
		cols, rows           int
	}{
		{100, 100, 20, 50, 20, 10},
		{4, 4, 20, 50, 4, 2},
		{100, 10, 20, 50, 20, 1},
		{10, 100, 20, 5, 1, 5},
	}

	for _, tt := range tests {
		cols, rows := fit(tt.w, tt.h, tt.width, tt.maxRows)
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("fit(%d,%d,%d,%d) = %d,%d; want %d,%d",
				tt.w, tt.h, tt.width, tt.maxRows, cols, rows, tt.cols, tt.rows)
		}
	}
}
