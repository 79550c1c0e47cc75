package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/cli/output"
	"github.com/yndnr/scratchkeep/internal/storage/record"
	"github.com/yndnr/scratchkeep/internal/storage/savefile"
)

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode the save file and list its records",
		ArgsUsage: "[FILE]",
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	rt := GetRuntime(c)
	path := rt.Config.Save.Path
	if c.NArg() > 0 {
		path = c.Args().First()
	}

	records, info, err := savefile.Load(path)
	if err != nil {
		return err
	}

	res := inspectResult{
		Path:     info.Path,
		Size:     info.Size,
		ModTime:  info.ModTime,
		Checksum: info.Checksum,
		Versions: info.Versions,
		Records:  make([]recordSummary, 0, len(records)),
	}
	for _, r := range records {
		res.Records = append(res.Records, summarize(r))
	}
	if rt.Format == output.FormatTable {
		fmt.Fprintf(rt.Out, "%s  %d bytes  %s  murmur3:%s\n\n",
			res.Path, res.Size, versionSummary(res.Versions), res.Checksum)
	}
	return rt.Print(res)
}

type recordSummary struct {
	Name       string  `json:"name" yaml:"name"`
	Version    int     `json:"version" yaml:"version"`
	Fields     int     `json:"fields" yaml:"fields"`
	Length     int     `json:"length" yaml:"length"`
	Formatted  bool    `json:"formatted" yaml:"formatted"`
	Point      *int    `json:"point,omitempty" yaml:"point,omitempty"`
	Mark       *int    `json:"mark,omitempty" yaml:"mark,omitempty"`
	Mode       *string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Narrowing  string  `json:"narrowing,omitempty" yaml:"narrowing,omitempty"`
	MarkActive *bool   `json:"mark_active,omitempty" yaml:"mark_active,omitempty"`
}

func summarize(r record.Record) recordSummary {
	s := recordSummary{
		Name:       r.Name,
		Version:    r.Version(),
		Fields:     r.Arity(),
		Length:     r.Content.Len(),
		Formatted:  r.Content.Formatted(),
		Mode:       r.Mode,
		MarkActive: r.MarkActive,
	}
	if r.Cursor != nil {
		point := r.Cursor.Point
		s.Point = &point
		if r.Cursor.MarkSet {
			mark := r.Cursor.Mark
			s.Mark = &mark
		}
	}
	if r.Narrowing != nil {
		s.Narrowing = r.Narrowing.String()
	}
	return s
}

type inspectResult struct {
	Path     string          `json:"path" yaml:"path"`
	Size     int64           `json:"size" yaml:"size"`
	ModTime  time.Time       `json:"mod_time" yaml:"mod_time"`
	Checksum string          `json:"checksum" yaml:"checksum"`
	Versions map[int]int     `json:"versions" yaml:"versions"`
	Records  []recordSummary `json:"records" yaml:"records"`
}

func (r inspectResult) Table(wide bool) *output.Table {
	headers := []string{"NAME", "VERSION", "LENGTH", "CURSOR", "MODE", "NARROWING", "MARK_ACTIVE"}
	if wide {
		headers = append(headers, "FIELDS", "FORMATTED")
	}
	t := &output.Table{Headers: headers}
	for _, s := range r.Records {
		row := []string{
			s.Name,
			strconv.Itoa(s.Version),
			strconv.Itoa(s.Length),
			cursorString(s.Point, s.Mark),
			orDash(s.Mode),
			dashIfEmpty(s.Narrowing),
			boolOrDash(s.MarkActive),
		}
		if wide {
			row = append(row, strconv.Itoa(s.Fields), strconv.FormatBool(s.Formatted))
		}
		t.AddRow(row...)
	}
	return t
}

func cursorString(point, mark *int) string {
	if point == nil {
		return "-"
	}
	if mark == nil {
		return strconv.Itoa(*point)
	}
	return fmt.Sprintf("%d (mark %d)", *point, *mark)
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return dashIfEmpty(*s)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func boolOrDash(b *bool) string {
	if b == nil {
		return "-"
	}
	return strconv.FormatBool(*b)
}

// versionSummary renders per-version record counts as "v1=2,v2=5".
func versionSummary(versions map[int]int) string {
	keys := make([]int, 0, len(versions))
	for v := range versions {
		keys = append(keys, v)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, v := range keys {
		parts = append(parts, fmt.Sprintf("v%d=%d", v, versions[v]))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
