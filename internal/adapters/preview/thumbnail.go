package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrUndecodable is returned for images the terminal renderer cannot decode
// (SVG, WebP, HEIC...). The upload itself is unaffected.
var ErrUndecodable = errors.New("preview not available for this format")

const halfBlock = "▀"

// Thumbnail renders data as rows of half-block cells, two pixels per cell.
// width is in terminal columns; the height follows the aspect ratio and is
// capped at maxRows.
func Thumbnail(data []byte, width, maxRows int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", fmt.Errorf("%w: empty image", ErrUndecodable)
	}

	cols, rows := fit(bounds.Dx(), bounds.Dy(), width, maxRows)

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := sample(img, bounds, col, row*2, cols, rows*2)
			bottom := sample(img, bounds, col, row*2+1, cols, rows*2)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top))).
				Background(lipgloss.Color(hex(bottom))).
				Render(halfBlock))
		}
		if row < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// fit returns the cell grid for a w×h image: cols <= width, rows <= maxRows,
// keeping the aspect ratio with two vertical pixels per cell.
func fit(w, h, width, maxRows int) (int, int) {
	if width < 1 {
		width = 1
	}
	if maxRows < 1 {
		maxRows = 1
	}

	cols := width
	if w < cols {
		cols = w
	}
	rows := (h*cols/w + 1) / 2
	if rows > maxRows {
		rows = maxRows
		cols = w * rows * 2 / h
		if cols > width {
			cols = width
		}
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// sample picks the nearest source pixel for cell (x, y) of a gw×gh grid
func sample(img image.Image, bounds image.Rectangle, x, y, gw, gh int) color.Color {
	sx := bounds.Min.X + x*bounds.Dx()/gw
	sy := bounds.Min.Y + y*bounds.Dy()/gh
	return img.At(sx, sy)
}

func hex(c color.Color) string {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return "#000000"
	}
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
