// Package record converts document state to and from save-file records.
//
// A record is a positional JSON array:
//
//	[name, content, cursor, mode, narrowing, mark_active]
//
// Fields are only ever appended. The writer's format version is inferred
// from the number of fields present: two to five fields is version 1, six
// or more is version 2. Missing trailing fields decode as absent and fields
// past the sixth are ignored, so old readers accept new files and new
// readers accept old files.
//
// Content is a JSON string, or when formatting is captured an array whose
// first element is the text and whose remaining elements are
// [start, end, key, value] property spans. Cursor is [point, mark] with a
// null mark when unset. Narrowing is [start, end]. All offsets are rune
// offsets into the full document.
package record
