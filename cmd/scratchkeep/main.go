// Package main provides the entry point for scratchkeep.
//
// scratchkeep persists a directory of scratch documents to a single save
// file, restores it, keeps time-stamped backups and can watch the
// directory to autosave it.
//
// Usage:
//
//	scratchkeep save ~/scratch
//	scratchkeep restore ~/scratch
//	scratchkeep --config ~/.scratchkeep/config.yaml watch ~/scratch
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/scratchkeep/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
