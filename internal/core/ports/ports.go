package ports

import (
	"context"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
)

// UploadRequest carries one file to the upload endpoint
type UploadRequest struct {
	Filename    string
	ContentType string
	Data        []byte

	// Progress, when set, is called as body bytes are written to the wire
	Progress func(sent, total int64)
}

// UploadResult is the parsed body of a successful upload
type UploadResult struct {
	// ImageURL is the server-relative location of the stored image (data.imageUrl)
	ImageURL   string
	StatusCode int
}

// Uploader defines the port for sending an image to the remote service
type Uploader interface {
	// Upload performs exactly one request. It never retries.
	// Errors are ErrUploadRejected, ErrMalformedResponse, a *TransportError,
	// or the context error when ctx is cancelled.
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// Clipboard defines the port for the system clipboard
type Clipboard interface {
	// WriteText replaces the clipboard contents with text
	WriteText(text string) error
}

// PreviewStore defines the port for session-scoped preview references
type PreviewStore interface {
	// Create registers file bytes and returns a new reference to them
	Create(name string, data []byte) domain.PreviewRef

	// Resolve returns the bytes behind a reference that has not been revoked
	Resolve(ref domain.PreviewRef) ([]byte, bool)

	// Revoke invalidates references; unknown references are ignored
	Revoke(refs ...domain.PreviewRef)
}
