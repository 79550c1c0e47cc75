package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/storage"
	"github.com/yndnr/scratchkeep/internal/storage/backup"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

// BackupCommand returns the backup subcommand group.
func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Manage backups of the save file",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List backups, newest first",
				Action: backupList,
			},
			{
				Name:   "snapshot",
				Usage:  "Copy the current save file into a new backup",
				Action: backupSnapshot,
			},
			{
				Name:  "prune",
				Usage: "Remove backups outside the retention policy",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "keep",
						Usage: "Keep the newest N backups",
					},
					&cli.DurationFlag{
						Name:  "newer-than",
						Usage: "Keep backups younger than this (e.g. 72h)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print what would be removed",
					},
				},
				Action: backupPrune,
			},
		},
	}
}

func backupEngine(rt *Runtime) (*storage.Engine, error) {
	if rt.Config.Backup.Dir == "" {
		return nil, fmt.Errorf("backups are disabled: set backup.dir")
	}
	return rt.NewEngine(workspace.New())
}

func backupList(c *cli.Context) error {
	rt := GetRuntime(c)
	engine, err := backupEngine(rt)
	if err != nil {
		return err
	}

	entries, err := engine.Backups()
	if err != nil {
		return err
	}
	return rt.Print(backupRows(entries))
}

// backupRow is one line of `backup list`.
type backupRow struct {
	Name     string    `json:"name" yaml:"name"`
	Size     int64     `json:"size" yaml:"size"`
	ModTime  time.Time `json:"mod_time" yaml:"mod_time" table:"MODIFIED"`
	Checksum string    `json:"checksum" yaml:"checksum" table:",wide"`
	Path     string    `json:"path" yaml:"path" table:",wide"`
}

func backupRows(entries []backup.Entry) []backupRow {
	rows := make([]backupRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, backupRow{
			Name:     e.Name,
			Size:     e.Size,
			ModTime:  e.ModTime,
			Checksum: e.Checksum,
			Path:     e.Path,
		})
	}
	return rows
}

func backupSnapshot(c *cli.Context) error {
	rt := GetRuntime(c)
	engine, err := backupEngine(rt)
	if err != nil {
		return err
	}

	path, err := engine.Snapshot(c.Context)
	if err != nil {
		return err
	}
	return rt.Print(map[string]string{"backup": path})
}

// prunePolicy builds the policy from flags, falling back to the
// configured retention.
func prunePolicy(c *cli.Context, rt *Runtime) (backup.Policy, error) {
	var policies []backup.Policy
	if c.IsSet("keep") {
		if c.Int("keep") < 0 {
			return nil, fmt.Errorf("--keep must not be negative")
		}
		policies = append(policies, backup.KeepNewest(c.Int("keep")))
	}
	if c.IsSet("newer-than") {
		policies = append(policies, backup.KeepNewerThan(c.Duration("newer-than"), rt.Config.Backup.Layout, time.Now))
	}

	switch len(policies) {
	case 0:
		if p := rt.Config.RetentionPolicy(time.Now); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("no retention policy: pass --keep or --newer-than, or set backup.keep_count or backup.keep_for")
	case 1:
		return policies[0], nil
	default:
		return backup.Chain(policies...), nil
	}
}

func backupPrune(c *cli.Context) error {
	rt := GetRuntime(c)
	engine, err := backupEngine(rt)
	if err != nil {
		return err
	}
	policy, err := prunePolicy(c, rt)
	if err != nil {
		return err
	}

	if c.Bool("dry-run") {
		entries, err := engine.Backups()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		selected, err := policy(names)
		if err != nil {
			return err
		}
		return rt.Print(map[string][]string{"would_remove": nonNil(selected)})
	}

	removed, err := engine.PruneBackups(c.Context, policy)
	if err != nil {
		return err
	}
	return rt.Print(map[string][]string{"removed": nonNil(removed)})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
