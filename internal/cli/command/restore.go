package command

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/cli/output"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

// RestoreCommand returns the restore command.
func RestoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Write the saved documents into DIR, replacing files of the same name",
		ArgsUsage: "DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Read this file instead of the save file",
			},
		},
		Action: restoreAction,
	}
}

func restoreAction(c *cli.Context) error {
	rt := GetRuntime(c)
	dir, err := requireArg(c, "DIR")
	if err != nil {
		return err
	}

	ws := workspace.New(rt.WorkspaceOptions()...)
	engine, err := rt.NewEngine(ws)
	if err != nil {
		return err
	}

	res, err := engine.Restore(c.Context, c.String("from"))
	if err != nil {
		return err
	}
	if err := workspace.WriteDir(dir, ws); err != nil {
		return err
	}

	return rt.Print(restoreResult{
		Path:      res.Path,
		Dir:       dir,
		Documents: res.Names,
		Versions:  res.Versions,
	})
}

type restoreResult struct {
	Path      string      `json:"path" yaml:"path"`
	Dir       string      `json:"dir" yaml:"dir"`
	Documents []string    `json:"documents" yaml:"documents"`
	Versions  map[int]int `json:"versions" yaml:"versions"`
}

func (r restoreResult) Table(bool) *output.Table {
	t := &output.Table{Headers: []string{"DOCUMENT", "FILE"}}
	for _, name := range r.Documents {
		t.AddRow(name, filepath.Join(r.Dir, name))
	}
	return t
}
