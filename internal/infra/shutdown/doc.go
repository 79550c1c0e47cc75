// Package shutdown runs registered hooks when the process is asked to
// stop. Hooks can be removed again, which lets components such as the
// autosave scheduler register for as long as they are active.
package shutdown
