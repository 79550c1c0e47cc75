// Package domain defines the core types shared by the scratchkeep
// persistence pipeline.
//
// It has no dependencies on storage or I/O. It holds:
//
//   - document.go: document state values (content, cursor, narrowing)
//   - host.go: the narrow interfaces a host editor implements
//   - errors.go: the coded error taxonomy
package domain
