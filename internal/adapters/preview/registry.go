// Package preview issues session-scoped references to selected file bytes
// and renders them as terminal thumbnails.
package preview

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
)

// Scheme prefixes every reference issued by a Registry
const Scheme = "blob:imgdrop/"

type entry struct {
	name string
	data []byte
}

// Registry maps preview references to in-memory bytes
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.PreviewRef]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[domain.PreviewRef]entry),
	}
}

// Create registers data and returns a fresh reference
func (r *Registry) Create(name string, data []byte) domain.PreviewRef {
	ref := domain.PreviewRef(Scheme + uuid.NewString())

	r.mu.Lock()
	r.entries[ref] = entry{name: name, data: data}
	r.mu.Unlock()

	return ref
}

// Resolve returns the bytes behind a live reference
func (r *Registry) Resolve(ref domain.PreviewRef) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[ref]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Revoke drops references so their bytes can be collected
func (r *Registry) Revoke(refs ...domain.PreviewRef) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ref := range refs {
		if e, ok := r.entries[ref]; ok {
			delete(r.entries, ref)
			slog.Debug("preview_revoked", "ref", string(ref), "name", e.name)
		}
	}
}

// Len returns the number of live references
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
