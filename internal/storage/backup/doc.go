// Package backup keeps time-keyed copies of the save file.
//
// Backups are named by formatting the current generation marker with a Go
// time layout. The marker only moves when NewGeneration is called, so all
// saves within one generation overwrite the same backup. Retention
// policies work on plain name lists and rely on the layout sorting in time
// order; ValidateLayout checks that before a rotator is built.
package backup
