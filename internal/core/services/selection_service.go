package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
	"github.com/kamal-hamza/imgdrop/internal/core/ports"
)

// SelectionService turns dropped or picked paths into a batch of images
type SelectionService struct {
	previews ports.PreviewStore
}

// NewSelectionService creates a new selection service
func NewSelectionService(previews ports.PreviewStore) *SelectionService {
	return &SelectionService{
		previews: previews,
	}
}

// SelectRequest represents the paths of one drop, in drop order
type SelectRequest struct {
	Paths []string
}

// RejectedFile is a dropped path that did not make it into the batch
type RejectedFile struct {
	Path   string
	Reason string
}

// SelectResponse represents the accepted batch and what was filtered out
type SelectResponse struct {
	Batch    domain.Batch
	Rejected []RejectedFile
}

// Execute reads every path, keeps the images (image/*) and issues a preview
// reference for each of them. Order is preserved so the first accepted image
// is the one that gets uploaded.
func (s *SelectionService) Execute(ctx context.Context, req SelectRequest) (*SelectResponse, error) {
	resp := &SelectResponse{}

	for _, p := range req.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, reason := s.load(p)
		if reason != "" {
			resp.Rejected = append(resp.Rejected, RejectedFile{Path: p, Reason: reason})
			slog.Info("selection_rejected", "path", p, "reason", reason)
			continue
		}
		resp.Batch.Files = append(resp.Batch.Files, file)
	}

	if resp.Batch.Len() > 1 {
		slog.Info("selection_batch", "files", resp.Batch.Len(), "uploading", resp.Batch.Files[0].Name)
	}

	return resp, nil
}

func (s *SelectionService) load(path string) (domain.SelectedFile, string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.SelectedFile{}, err.Error()
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SelectedFile{}, "file not found"
		}
		return domain.SelectedFile{}, err.Error()
	}
	if info.IsDir() {
		return domain.SelectedFile{}, "is a directory"
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return domain.SelectedFile{}, fmt.Sprintf("failed to read: %v", err)
	}

	name := filepath.Base(abs)
	contentType := domain.DetectImageType(name, data)
	if contentType == "" {
		return domain.SelectedFile{}, "not an image"
	}

	return domain.SelectedFile{
		Name:        name,
		Path:        abs,
		Data:        data,
		ContentType: contentType,
		Preview:     s.previews.Create(name, data),
	}, ""
}
