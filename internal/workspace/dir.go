package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// FilePerm is the mode WriteDir creates buffer files with.
const FilePerm = 0600

// LoadDir creates a workspace holding one buffer per regular file in dir,
// in name order. Hidden files are skipped.
func LoadDir(dir string, opts ...Option) (*Workspace, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound.WithDetails(dir)
		}
		return nil, domain.IOError("read dir", dir, err)
	}

	w := New(opts...)
	for _, e := range entries {
		if !e.Type().IsRegular() || isHidden(e.Name()) {
			continue
		}
		if err := w.LoadFile(dir, e.Name()); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// LoadFile reads dir/name into the buffer of the same name. The buffer is
// marked modified only when its text changed.
func (w *Workspace) LoadFile(dir, name string) error {
	p := filepath.Join(dir, name)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrNotFound.WithDetails(p)
		}
		return domain.IOError("read", p, err)
	}

	b := w.Create(name)
	if b.Content(false).Text != string(data) {
		b.SetText(string(data))
	}
	return nil
}

// WriteDir writes the text of every buffer into dir, one file per buffer,
// creating dir if needed. Files for buffers that do not exist are left
// alone.
func WriteDir(dir string, w *Workspace) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return domain.IOError("mkdir", dir, err)
	}

	names := w.Names()
	sort.Strings(names)
	for _, name := range names {
		if err := validFileName(name); err != nil {
			return err
		}
		b, ok := w.Buffer(name)
		if !ok {
			continue
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(b.Content(false).Text), FilePerm); err != nil {
			return domain.IOError("write", p, err)
		}
	}
	return nil
}

func validFileName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("workspace: buffer name %q cannot be used as a file name", name)
	}
	return nil
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
