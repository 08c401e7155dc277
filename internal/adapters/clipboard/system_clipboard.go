package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
// (e.g. no xclip/xsel/wl-copy on Linux).
var ErrUnsupported = errors.New("clipboard not supported on this system")

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

// NewSystemClipboard creates a clipboard backed by atotto/clipboard
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// WriteText copies text verbatim
func (c *SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard utility was found
func Available() bool {
	return !clipboard.Unsupported
}
