// Package savefile commits record sets to disk and reads them back.
//
// Commit never exposes a partially written save file: the blob is written
// to a ".new" sibling under a restrictive umask, fsynced, handed to the
// pre-commit hooks and only then renamed over the target. A crash at any
// point before the rename leaves the previous file untouched.
package savefile
