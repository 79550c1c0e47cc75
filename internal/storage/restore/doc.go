// Package restore replays a save file against a host.
//
// Every record is decoded before any document is touched, so a malformed
// file never yields a partial restore. Restoring is destructive: a
// document that already exists under a record's name is overwritten.
package restore
