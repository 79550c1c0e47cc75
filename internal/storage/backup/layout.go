package backup

import (
	"sort"
	"strings"
	"time"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// DefaultLayout names backups like 2024-01-31--23-59-59.
const DefaultLayout = "2006-01-02--15-04-05"

// ValidateLayout checks that names formatted with layout sort in time
// order. It probes every unit roll-over, including single to double digit
// transitions, and rejects layouts that go backwards, never change across
// years, or produce path separators.
func ValidateLayout(layout string) error {
	if layout == "" {
		return domain.ErrInvalidLayout.WithDetails("layout is empty")
	}

	probes := layoutProbes()
	prev := probes[0].Format(layout)
	for _, t := range probes {
		name := t.Format(layout)
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return domain.ErrInvalidLayout.WithDetailsf("layout %q yields file name %q", layout, name)
		}
		if name < prev {
			return domain.ErrInvalidLayout.WithDetailsf("layout %q: %q sorts before %q", layout, name, prev)
		}
		prev = name
	}

	y1 := time.Date(2009, 12, 31, 23, 59, 59, 0, time.UTC).Format(layout)
	y2 := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC).Format(layout)
	if y1 == y2 {
		return domain.ErrInvalidLayout.WithDetailsf("layout %q does not change with time", layout)
	}
	return nil
}

// layoutProbes returns instants in ascending order covering each calendar
// and clock roll-over.
func layoutProbes() []time.Time {
	var ts []time.Time
	at := func(y int, mo time.Month, d, h, mi, s int) {
		ts = append(ts, time.Date(y, mo, d, h, mi, s, 0, time.UTC))
	}

	for s := 0; s < 60; s++ {
		at(2009, 1, 1, 0, 0, s)
	}
	for m := 0; m < 60; m++ {
		at(2009, 1, 1, 0, m, 59)
	}
	for h := 0; h < 24; h++ {
		at(2009, 1, 1, h, 0, 0)
		at(2009, 1, 1, h, 59, 59)
	}
	for d := 1; d <= 31; d++ {
		at(2009, 1, d, 0, 0, 0)
		at(2009, 1, d, 23, 59, 59)
	}
	for mo := time.January; mo <= time.December; mo++ {
		at(2009, mo, 1, 0, 0, 0)
		last := time.Date(2009, mo+1, 0, 23, 59, 59, 0, time.UTC)
		ts = append(ts, last)
	}
	at(2010, 1, 1, 0, 0, 0)
	at(2099, 12, 31, 23, 59, 59)
	at(2100, 1, 1, 0, 0, 0)

	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	return ts
}
