package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
	"github.com/kamal-hamza/imgdrop/internal/core/ports"
)

// MockUploader is a mock implementation of the Uploader interface for testing
type MockUploader struct {
	mu       sync.Mutex
	requests []ports.UploadRequest

	// Result and Err are returned by every call unless UploadFunc is set
	Result *ports.UploadResult
	Err    error

	// UploadFunc overrides Result/Err when set
	UploadFunc func(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error)
}

// NewMockUploader creates an uploader that answers with imageURL
func NewMockUploader(imageURL string) *MockUploader {
	return &MockUploader{
		Result: &ports.UploadResult{ImageURL: imageURL, StatusCode: 200},
	}
}

// Upload records the request and returns the configured answer
func (m *MockUploader) Upload(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.UploadFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if req.Progress != nil {
		total := int64(len(req.Data))
		req.Progress(total, total)
	}
	return m.Result, m.Err
}

// Requests returns a copy of every request received
func (m *MockUploader) Requests() []ports.UploadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.UploadRequest(nil), m.requests...)
}

// Calls returns how many uploads were attempted
func (m *MockUploader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockClipboard is an in-memory clipboard
type MockClipboard struct {
	mu     sync.Mutex
	text   string
	writes int

	// Err, when set, is returned by WriteText and nothing is stored
	Err error
}

// NewMockClipboard creates an empty clipboard
func NewMockClipboard() *MockClipboard {
	return &MockClipboard{}
}

// WriteText stores text
func (m *MockClipboard) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.text = text
	m.writes++
	return nil
}

// Text returns the current clipboard contents
func (m *MockClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many successful writes happened
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// MockPreviewStore hands out sequential references
type MockPreviewStore struct {
	mu      sync.Mutex
	next    int
	entries map[domain.PreviewRef][]byte
	revoked []domain.PreviewRef
}

// NewMockPreviewStore creates an empty preview store
func NewMockPreviewStore() *MockPreviewStore {
	return &MockPreviewStore{
		entries: make(map[domain.PreviewRef][]byte),
	}
}

// Create registers data under a new reference
func (m *MockPreviewStore) Create(name string, data []byte) domain.PreviewRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	ref := domain.PreviewRef(fmt.Sprintf("blob:mock/%d-%s", m.next, name))
	m.entries[ref] = data
	return ref
}

// Resolve returns the data of a live reference
func (m *MockPreviewStore) Resolve(ref domain.PreviewRef) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.entries[ref]
	return data, ok
}

// Revoke removes references
func (m *MockPreviewStore) Revoke(refs ...domain.PreviewRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ref := range refs {
		delete(m.entries, ref)
		m.revoked = append(m.revoked, ref)
	}
}

// Live returns the number of references that are still resolvable
func (m *MockPreviewStore) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Revoked returns every reference passed to Revoke
func (m *MockPreviewStore) Revoked() []domain.PreviewRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PreviewRef(nil), m.revoked...)
}
