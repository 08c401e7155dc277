package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
	"github.com/kamal-hamza/imgdrop/internal/core/lifecycle"
	"github.com/kamal-hamza/imgdrop/internal/core/ports"
)

// UploadService sends a selected file and builds its hosted URL
type UploadService struct {
	uploader ports.Uploader
	baseURL  string
}

// NewUploadService creates a new upload service.
// baseURL is the configured base used to build hosted URLs.
func NewUploadService(uploader ports.Uploader, baseURL string) *UploadService {
	return &UploadService{
		uploader: uploader,
		baseURL:  baseURL,
	}
}

// UploadRequest represents a request to upload one file
type UploadRequest struct {
	File     domain.SelectedFile
	Progress func(sent, total int64)
}

// UploadResponse represents the response from a successful upload
type UploadResponse struct {
	HostedURL string
	ImageURL  string
}

// Execute uploads req.File exactly once
func (s *UploadService) Execute(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if req.File.IsZero() {
		return nil, fmt.Errorf("no file selected")
	}

	result, err := s.uploader.Upload(ctx, ports.UploadRequest{
		Filename:    req.File.Name,
		ContentType: req.File.ContentType,
		Data:        req.File.Data,
		Progress:    req.Progress,
	})
	if err != nil {
		return nil, err
	}

	return &UploadResponse{
		HostedURL: BuildHostedURL(s.baseURL, result.ImageURL),
		ImageURL:  result.ImageURL,
	}, nil
}

// BaseURL returns the configured base URL
func (s *UploadService) BaseURL() string {
	return s.baseURL
}

// BuildHostedURL joins the base URL and the server-returned image path with
// one slash and turns every backslash into a forward slash.
func BuildHostedURL(baseURL, imageURL string) string {
	imageURL = strings.ReplaceAll(imageURL, `\`, "/")
	joined := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(imageURL, "/")
	return strings.ReplaceAll(joined, `\`, "/")
}

// UserMessage maps an upload error to the text shown to the user.
// Rejected uploads and malformed responses share one generic message;
// transport failures show the underlying description as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ports.ErrUploadRejected) || errors.Is(err, ports.ErrMalformedResponse) {
		return lifecycle.GenericFailureMessage
	}

	var transportErr *ports.TransportError
	if errors.As(err, &transportErr) && transportErr.Err != nil {
		return transportErr.Err.Error()
	}

	return err.Error()
}

// IsCancelled reports whether err comes from a superseded or reset attempt
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
