package savefile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/storage/record"
)

// Info describes a save file on disk.
type Info struct {
	Path     string      `json:"path"`
	Size     int64       `json:"size"`
	ModTime  time.Time   `json:"mod_time"`
	Mode     os.FileMode `json:"mode"`
	Records  int         `json:"records"`
	Versions map[int]int `json:"versions"`
	Checksum string      `json:"checksum"`
}

// Load reads and decodes the save file at path. A missing file returns an
// error matching domain.ErrNotFound; a malformed one matches
// domain.ErrDecode.
func Load(path string) ([]record.Record, *Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, domain.ErrNotFound.WithDetails(path)
		}
		return nil, nil, domain.IOError("read", path, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, domain.IOError("stat", path, err)
	}

	records, err := record.Unmarshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("savefile: %s: %w", path, err)
	}

	info := &Info{
		Path:     path,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		Mode:     stat.Mode().Perm(),
		Records:  len(records),
		Versions: make(map[int]int),
		Checksum: Checksum(data),
	}
	for _, r := range records {
		info.Versions[r.Version()]++
	}
	return records, info, nil
}

// Checksum returns a hex murmur3 128-bit digest of data.
func Checksum(data []byte) string {
	h1, h2 := murmur3.Sum128(data)
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// Stat describes the save file at path without returning its records.
func Stat(path string) (*Info, error) {
	_, info, err := Load(path)
	return info, err
}
