package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/cli/output"
	"github.com/yndnr/scratchkeep/internal/storage"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

// SaveCommand returns the save command.
func SaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Save every file of DIR as a document",
		ArgsUsage: "DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "to",
				Usage: "Write to this file instead of the save file (no backup)",
			},
		},
		Action: saveAction,
	}
}

func saveAction(c *cli.Context) error {
	rt := GetRuntime(c)
	dir, err := requireArg(c, "DIR")
	if err != nil {
		return err
	}

	ws, err := workspace.LoadDir(dir, rt.WorkspaceOptions()...)
	if err != nil {
		return err
	}
	engine, err := rt.NewEngine(ws)
	if err != nil {
		return err
	}

	info, err := engine.Save(c.Context, c.String("to"))
	if info == nil {
		return err
	}
	if printErr := rt.Print(saveResult{*info}); printErr != nil {
		return printErr
	}
	return err
}

// saveResult renders a SaveInfo.
type saveResult struct {
	storage.SaveInfo `yaml:",inline"`
}

func (r saveResult) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("path", r.Path)
	t.AddRow("documents", fmt.Sprintf("%d", len(r.Records)))
	t.AddRow("bytes", fmt.Sprintf("%d", r.Bytes))
	if r.Backup != "" {
		t.AddRow("backup", r.Backup)
	}
	if len(r.Pruned) > 0 {
		t.AddRow("pruned", strings.Join(r.Pruned, ","))
	}
	if wide {
		t.AddRow("id", r.ID)
		t.AddRow("names", strings.Join(r.Records, ","))
	}
	return t
}
