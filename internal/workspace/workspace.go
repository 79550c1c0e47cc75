package workspace

import (
	"path"
	"sync"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// Workspace is an in-memory domain.Host. Buffers enumerate in creation
// order.
type Workspace struct {
	mu      sync.RWMutex
	buffers map[string]*Buffer
	order   []string

	persistable func(domain.Document) bool
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithFilter sets the predicate deciding which buffers are saved.
func WithFilter(fn func(domain.Document) bool) Option {
	return func(w *Workspace) {
		w.persistable = fn
	}
}

// WithPatterns saves only buffers whose name matches one of the
// path.Match patterns.
func WithPatterns(patterns ...string) Option {
	return WithFilter(func(doc domain.Document) bool {
		for _, p := range patterns {
			if ok, _ := path.Match(p, doc.Name()); ok {
				return true
			}
		}
		return false
	})
}

// New creates an empty workspace. Without a filter every buffer is
// persistable.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		buffers: make(map[string]*Buffer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Buffer returns the named buffer.
func (w *Workspace) Buffer(name string) (*Buffer, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.buffers[name]
	return b, ok
}

// Create returns the named buffer, creating it empty if absent.
func (w *Workspace) Create(name string) *Buffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.buffers[name]; ok {
		return b
	}
	b := newBuffer(name)
	w.buffers[name] = b
	w.order = append(w.order, name)
	return b
}

// Kill removes the named buffer.
func (w *Workspace) Kill(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.buffers[name]; !ok {
		return false
	}
	delete(w.buffers, name)
	for i, n := range w.order {
		if n == name {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns buffer names in creation order.
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.order...)
}

// Len returns the number of buffers.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Documents implements domain.Host.
func (w *Workspace) Documents() []domain.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	docs := make([]domain.Document, 0, len(w.order))
	for _, name := range w.order {
		docs = append(docs, w.buffers[name])
	}
	return docs
}

// Persistable implements domain.Host.
func (w *Workspace) Persistable(doc domain.Document) bool {
	if w.persistable == nil {
		return true
	}
	return w.persistable(doc)
}

// Open implements domain.Host. An existing buffer is returned as is and
// will be overwritten by the caller.
func (w *Workspace) Open(name string) (domain.Editor, error) {
	return w.Create(name), nil
}

// MarkNotModified implements domain.Host.
func (w *Workspace) MarkNotModified(names []string) {
	for _, name := range names {
		if b, ok := w.Buffer(name); ok {
			b.setModified(false)
		}
	}
}

var _ domain.Host = (*Workspace)(nil)
