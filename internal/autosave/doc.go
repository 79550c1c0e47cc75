// Package autosave runs a save function on a timer.
//
// A Scheduler owns at most one timer goroutine and one shutdown hook.
// Enable always tears the previous timer down first, so firings are never
// duplicated. In interval mode the save runs every period; in idle mode it
// runs once after a period without activity and waits for the next Touch
// before arming again.
package autosave
