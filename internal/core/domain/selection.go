package domain

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// PreviewRef is a session-scoped reference to the bytes of a selected file.
// It stays resolvable until it is revoked or the process exits.
type PreviewRef string

// SelectedFile represents an image the user dropped or picked
type SelectedFile struct {
	Name        string     // Display name (base name of the path)
	Path        string     // Absolute path on disk
	Data        []byte     // Raw file contents
	ContentType string     // Detected MIME type (always image/*)
	Preview     PreviewRef // Local preview reference
}

// Size returns the payload size in bytes
func (f SelectedFile) Size() int64 {
	return int64(len(f.Data))
}

// IsZero reports whether no file is held
func (f SelectedFile) IsZero() bool {
	return f.Name == "" && f.Data == nil
}

// Batch is the ordered set of accepted files from a single drop or pick.
// Only the first file is uploaded; every file keeps a preview.
type Batch struct {
	Files []SelectedFile
}

// Primary returns the file that gets uploaded
func (b Batch) Primary() (SelectedFile, bool) {
	if len(b.Files) == 0 {
		return SelectedFile{}, false
	}
	return b.Files[0], true
}

// Previews returns the preview references of every file in the batch
func (b Batch) Previews() []PreviewRef {
	refs := make([]PreviewRef, 0, len(b.Files))
	for _, f := range b.Files {
		if f.Preview != "" {
			refs = append(refs, f.Preview)
		}
	}
	return refs
}

// Len returns the number of files in the batch
func (b Batch) Len() int {
	return len(b.Files)
}

// DetectImageType returns the image MIME type of a file, or "" when the file
// is not an image. Content sniffing wins; the extension is the fallback for
// formats the sniffer reports as text (SVG) or does not know.
func DetectImageType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if IsImageType(sniffed) {
		return sniffed
	}

	byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if IsImageType(byExt) {
		// Drop parameters such as "; charset=utf-8"
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = strings.TrimSpace(byExt[:i])
		}
		return byExt
	}

	return ""
}

// IsImageType reports whether a MIME type matches image/*
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
