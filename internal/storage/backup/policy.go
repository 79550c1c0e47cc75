package backup

import (
	"sort"
	"time"
)

// Policy maps the raw, unsorted list of backup names to the names that
// should be deleted. Cleanup calls it exactly once.
type Policy func(names []string) ([]string, error)

// KeepNewest keeps the n lexicographically greatest names and deletes the
// rest.
func KeepNewest(n int) Policy {
	return func(names []string) ([]string, error) {
		if n < 0 {
			n = 0
		}
		if len(names) <= n {
			return nil, nil
		}
		sorted := append([]string(nil), names...)
		sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
		return sorted[n:], nil
	}
}

// KeepNewerThan deletes every name that sorts before now-d formatted with
// layout. A nil now uses time.Now.
func KeepNewerThan(d time.Duration, layout string, now func() time.Time) Policy {
	if now == nil {
		now = time.Now
	}
	return func(names []string) ([]string, error) {
		cutoff := now().Add(-d).Format(layout)
		var out []string
		for _, name := range names {
			if name < cutoff {
				out = append(out, name)
			}
		}
		return out, nil
	}
}

// Chain deletes the union of what every policy selects. Each policy sees
// the full name list.
func Chain(policies ...Policy) Policy {
	return func(names []string) ([]string, error) {
		seen := make(map[string]struct{})
		var out []string
		for _, p := range policies {
			selected, err := p(names)
			if err != nil {
				return nil, err
			}
			for _, name := range selected {
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
		return out, nil
	}
}
