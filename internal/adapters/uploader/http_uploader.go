package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kamal-hamza/imgdrop/internal/core/ports"
)

const (
	// DefaultUploadPath is the endpoint path appended to the base URL
	DefaultUploadPath = "/api/v1/upload"

	// FieldName is the multipart part carrying the file bytes
	FieldName = "image"

	// maxErrorBody bounds how much of a rejected response is read for logging
	maxErrorBody = 4 << 10
)

// HTTPUploader posts images as multipart/form-data
type HTTPUploader struct {
	client   *http.Client
	endpoint string
}

// NewHTTPUploader creates an uploader for baseURL + uploadPath.
// A zero timeout means no client-side timeout.
func NewHTTPUploader(baseURL, uploadPath string, timeout time.Duration) *HTTPUploader {
	return &HTTPUploader{
		client:   &http.Client{Timeout: timeout},
		endpoint: JoinEndpoint(baseURL, uploadPath),
	}
}

// Ping sends a HEAD request to the upload endpoint. Any HTTP response,
// whatever its status, counts as reachable.
func (u *HTTPUploader) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.endpoint, nil)
	if err != nil {
		return &ports.TransportError{Err: err}
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return &ports.TransportError{Err: err}
	}
	resp.Body.Close()

	slog.Debug("endpoint_reachable", "endpoint", u.endpoint, "status", resp.StatusCode)
	return nil
}

// Endpoint returns the full upload URL
func (u *HTTPUploader) Endpoint() string {
	return u.endpoint
}

// JoinEndpoint joins a base URL and a path with exactly one slash between them
func JoinEndpoint(baseURL, uploadPath string) string {
	if uploadPath == "" {
		uploadPath = DefaultUploadPath
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(uploadPath, "/")
}

type uploadResponse struct {
	Data *struct {
		ImageURL *string `json:"imageUrl"`
	} `json:"data"`
}

// Upload sends one POST carrying req.Data under the "image" field
func (u *HTTPUploader) Upload(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
	body, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload body: %w", err)
	}

	total := int64(body.Len())
	var reader io.Reader = body
	if req.Progress != nil {
		reader = &progressReader{r: body, total: total, fn: req.Progress}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, reader)
	if err != nil {
		return nil, &ports.TransportError{Err: err}
	}
	httpReq.ContentLength = total
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	slog.Info("upload_started", "endpoint", u.endpoint, "file", req.Filename, "bytes", len(req.Data))
	started := time.Now()

	resp, err := u.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			slog.Info("upload_cancelled", "file", req.Filename)
			return nil, ctxErr
		}
		slog.Error("upload_transport_failed", "file", req.Filename, "error", err)
		return nil, &ports.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Warn("upload_rejected",
			"file", req.Filename,
			"status", resp.StatusCode,
			"body", string(snippet),
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: status %d", ports.ErrUploadRejected, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Error("upload_transport_failed", "file", req.Filename, "error", err)
		return nil, &ports.TransportError{Err: err}
	}

	// The whole body must be one JSON document; trailing data is rejected
	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		slog.Warn("upload_response_malformed", "file", req.Filename, "error", err)
		return nil, fmt.Errorf("%w: %v", ports.ErrMalformedResponse, err)
	}
	if parsed.Data == nil || parsed.Data.ImageURL == nil || *parsed.Data.ImageURL == "" {
		slog.Warn("upload_response_malformed", "file", req.Filename, "error", "missing data.imageUrl")
		return nil, fmt.Errorf("%w: missing data.imageUrl", ports.ErrMalformedResponse)
	}

	slog.Info("upload_completed",
		"file", req.Filename,
		"status", resp.StatusCode,
		"image_url", *parsed.Data.ImageURL,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return &ports.UploadResult{
		ImageURL:   *parsed.Data.ImageURL,
		StatusCode: resp.StatusCode,
	}, nil
}

// encodeMultipart builds the form body in memory so its length is known
// up front and progress can be reported against it.
func encodeMultipart(req ports.UploadRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldName, escapeQuotes(req.Filename)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
