// Package storage ties document persistence together.
//
// The Engine binds a host to the record codec, the atomic writer, the
// restorer and an optional backup rotator:
//
//   - Save captures every persistable document, commits the record set
//     atomically, marks the captured documents not modified and then
//     refreshes and prunes the backup directory.
//   - Restore decodes a save file completely before applying any record.
//   - Document mode lets a host route its generic save of a persistable
//     document through Save.
//
// Save, Restore and CleanupBackups are serialized by one mutex.
package storage
