package domain

import (
	"fmt"
	"unicode/utf8"
)

// Property is an inline formatting span attached to a range of text.
// Start and End are rune offsets, End exclusive.
type Property struct {
	Start int
	End   int
	Key   string
	Value string
}

// Content is the full text of a document, optionally with formatting spans.
type Content struct {
	Text       string
	Properties []Property
}

// PlainContent returns content without formatting.
func PlainContent(text string) Content {
	return Content{Text: text}
}

// Len returns the length of the text in runes.
func (c Content) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Formatted reports whether the content carries formatting spans.
func (c Content) Formatted() bool {
	return len(c.Properties) > 0
}

// Plain returns a copy of the content with formatting removed.
func (c Content) Plain() Content {
	return Content{Text: c.Text}
}

// Validate checks that every property span lies within the text.
func (c Content) Validate() error {
	n := c.Len()
	for i, p := range c.Properties {
		if p.Start < 0 || p.End < p.Start || p.End > n {
			return fmt.Errorf("property %d: span [%d,%d) outside text of length %d", i, p.Start, p.End, n)
		}
	}
	return nil
}

// Equal reports whether two contents have the same text and spans.
func (c Content) Equal(o Content) bool {
	if c.Text != o.Text || len(c.Properties) != len(o.Properties) {
		return false
	}
	for i := range c.Properties {
		if c.Properties[i] != o.Properties[i] {
			return false
		}
	}
	return true
}

// Cursor is the point and the optional secondary anchor (mark).
// Offsets are relative to the full, unnarrowed document.
type Cursor struct {
	Point   int
	Mark    int
	MarkSet bool
}

// CursorAt returns a cursor at point with no mark.
func CursorAt(point int) Cursor {
	return Cursor{Point: point}
}

// WithMark returns a copy of the cursor with the mark set.
func (c Cursor) WithMark(mark int) Cursor {
	c.Mark = mark
	c.MarkSet = true
	return c
}

// Range is a half-open region [Start, End) of a document.
type Range struct {
	Start int
	End   int
}

// Covers reports whether the range spans a whole document of length n.
func (r Range) Covers(n int) bool {
	return r.Start <= 0 && r.End >= n
}

// Valid reports whether the range is well formed.
func (r Range) Valid() bool {
	return r.Start >= 0 && r.End >= r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}
