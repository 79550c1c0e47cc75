// Package workspace provides a host of named text buffers.
//
// A Workspace keeps buffers in memory and satisfies domain.Host, so the
// persistence engine can save and restore it. LoadDir and WriteDir map a
// workspace to a flat directory of plain files, one file per buffer.
package workspace
