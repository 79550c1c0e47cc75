package domain

// Document is the read side of a live document.
type Document interface {
	// Name identifies the document and is used as the restore key.
	Name() string

	// Content returns the full text. Formatting spans are only included
	// when formatted is true.
	Content(formatted bool) Content

	// Cursor returns point and mark against the unnarrowed document.
	Cursor() Cursor

	// Mode returns the document type tag, or "" when the host has none.
	Mode() string

	// Narrowing returns the visible region. A region covering the whole
	// document means the document is not narrowed.
	Narrowing() Range

	// MarkActive reports whether the mark denotes an active selection.
	MarkActive() bool
}

// Editor is the write side of a live document. Restores call the methods
// in declaration order.
type Editor interface {
	ReplaceContent(c Content) error
	SetMode(mode string) error
	SetCursor(c Cursor) error
	SetNarrowing(r Range) error
	SetMarkActive(active bool) error
}

// Host is the editor environment the persistence pipeline runs against.
type Host interface {
	// Documents enumerates every live document.
	Documents() []Document

	// Persistable reports whether a document should be saved.
	Persistable(doc Document) bool

	// Open returns the named document for writing, creating it if absent.
	// An existing document is overwritten by the restore.
	Open(name string) (Editor, error)

	// MarkNotModified is called with the names captured by a committed save.
	MarkNotModified(names []string)
}
