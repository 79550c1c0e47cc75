package workspace

import (
	"fmt"
	"sync"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// Buffer is one named document. It is safe for concurrent use.
type Buffer struct {
	name string

	mu         sync.RWMutex
	content    domain.Content
	cursor     domain.Cursor
	mode       string
	narrowing  domain.Range
	narrowed   bool
	markActive bool
	modified   bool
}

func newBuffer(name string) *Buffer {
	return &Buffer{name: name}
}

// Name returns the buffer name.
func (b *Buffer) Name() string { return b.name }

// Content returns the text, with formatting spans only when formatted.
func (b *Buffer) Content(formatted bool) domain.Content {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !formatted {
		return b.content.Plain()
	}
	c := domain.Content{Text: b.content.Text}
	c.Properties = append([]domain.Property(nil), b.content.Properties...)
	return c
}

// Cursor returns the point and mark.
func (b *Buffer) Cursor() domain.Cursor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// Mode returns the buffer's mode tag.
func (b *Buffer) Mode() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode
}

// Narrowing returns the visible region, the whole text when not narrowed.
func (b *Buffer) Narrowing() domain.Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.narrowed {
		return domain.Range{Start: 0, End: b.content.Len()}
	}
	return b.narrowing
}

// MarkActive reports whether the region between point and mark is active.
func (b *Buffer) MarkActive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.markActive && b.cursor.MarkSet
}

// Modified reports whether the buffer changed since it was last saved.
func (b *Buffer) Modified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modified
}

// SetText replaces the text as a user edit would. Formatting is dropped,
// narrowing is widened and the cursor is clamped.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = domain.PlainContent(text)
	b.narrowed = false
	n := b.content.Len()
	b.cursor.Point = min(b.cursor.Point, n)
	b.cursor.Mark = min(b.cursor.Mark, n)
	b.modified = true
}

// ReplaceContent overwrites the buffer with c. Cursor, mark, region and
// narrowing are reset; a restore sets them again from the record.
func (b *Buffer) ReplaceContent(c domain.Content) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("buffer %q: %w", b.name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = c
	b.cursor = domain.Cursor{}
	b.markActive = false
	b.narrowing = domain.Range{}
	b.narrowed = false
	b.modified = true
	return nil
}

// SetMode sets the mode tag.
func (b *Buffer) SetMode(mode string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode
	return nil
}

// SetCursor moves point and mark. Offsets must lie within the full text.
// Clearing the mark deactivates the region.
func (b *Buffer) SetCursor(c domain.Cursor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.content.Len()
	if c.Point < 0 || c.Point > n {
		return fmt.Errorf("buffer %q: point %d outside [0,%d]", b.name, c.Point, n)
	}
	if c.MarkSet && (c.Mark < 0 || c.Mark > n) {
		return fmt.Errorf("buffer %q: mark %d outside [0,%d]", b.name, c.Mark, n)
	}
	b.cursor = c
	if !c.MarkSet {
		b.markActive = false
	}
	return nil
}

// SetNarrowing restricts the view to r. A range covering the whole text
// widens the buffer.
func (b *Buffer) SetNarrowing(r domain.Range) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.content.Len()
	if !r.Valid() || r.End > n {
		return fmt.Errorf("buffer %q: narrowing %s outside [0,%d]", b.name, r, n)
	}
	b.narrowing = r
	b.narrowed = !r.Covers(n)
	return nil
}

// SetMarkActive activates or deactivates the region.
func (b *Buffer) SetMarkActive(active bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if active && !b.cursor.MarkSet {
		return fmt.Errorf("buffer %q: no mark to activate", b.name)
	}
	b.markActive = active
	return nil
}

func (b *Buffer) setModified(v bool) {
	b.mu.Lock()
	b.modified = v
	b.mu.Unlock()
}
