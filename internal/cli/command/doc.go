// Package command defines the scratchkeep command line.
//
// Every command runs against a Runtime prepared by the app's Before hook:
// the resolved configuration, the logger and a metrics registry. Commands
// that touch documents build a workspace from a directory (one regular
// file per document) and drive the storage engine with it.
package command
