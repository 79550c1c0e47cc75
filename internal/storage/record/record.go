package record

import (
	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// Field positions within an encoded record.
const (
	FieldName = iota
	FieldContent
	FieldCursor
	FieldMode
	FieldNarrowing
	FieldMarkActive

	// FieldCount is the number of fields written by the current version.
	FieldCount
)

const (
	// minFields is the shortest record any version ever wrote.
	minFields = FieldContent + 1
	// legacyFields is the width of a version 1 record.
	legacyFields = FieldMarkActive
)

// Options selects which optional field groups are captured.
type Options struct {
	Mode      bool
	Cursor    bool
	Narrowing bool
	Formatted bool

	// Legacy writes version 1 records (no mark_active field) for readers
	// that predate it.
	Legacy bool
}

// DefaultOptions captures everything except formatting.
func DefaultOptions() Options {
	return Options{
		Mode:      true,
		Cursor:    true,
		Narrowing: true,
	}
}

// Record is one persisted document snapshot. Optional fields are nil when
// absent, either because they were not captured or because the writer's
// format version predates them.
type Record struct {
	Name       string
	Content    domain.Content
	Cursor     *domain.Cursor
	Mode       *string
	Narrowing  *domain.Range
	MarkActive *bool

	arity int
}

// Arity returns how many fields the writer produced.
func (r Record) Arity() int {
	if r.arity == 0 {
		return FieldCount
	}
	return r.arity
}

// Version returns the format version inferred from the arity.
func (r Record) Version() int {
	if r.Arity() > FieldMarkActive {
		return 2
	}
	return 1
}

// Encode captures a snapshot of doc.
func Encode(doc domain.Document, opts Options) Record {
	content := doc.Content(opts.Formatted)
	if !opts.Formatted {
		content = content.Plain()
	}

	r := Record{
		Name:    doc.Name(),
		Content: content,
		arity:   FieldCount,
	}
	if opts.Legacy {
		r.arity = legacyFields
	}

	if opts.Cursor {
		c := doc.Cursor()
		r.Cursor = &c
	}
	if opts.Mode {
		if m := doc.Mode(); m != "" {
			r.Mode = &m
		}
	}
	if opts.Narrowing {
		if n := doc.Narrowing(); !n.Covers(content.Len()) {
			r.Narrowing = &n
		}
	}
	if opts.Cursor && !opts.Legacy {
		active := doc.MarkActive()
		r.MarkActive = &active
	}
	return r
}
