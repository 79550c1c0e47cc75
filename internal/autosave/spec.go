package autosave

import (
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// Mode selects how the timer fires.
type Mode int

const (
	// Off disables autosave.
	Off Mode = iota
	// Interval fires every period.
	Interval
	// Idle fires after a period without activity.
	Idle
)

func (m Mode) String() string {
	switch m {
	case Interval:
		return "interval"
	case Idle:
		return "idle"
	default:
		return "off"
	}
}

// Spec describes an autosave timer.
type Spec struct {
	Mode   Mode
	Period time.Duration
}

// Enabled reports whether the spec starts a timer.
func (s Spec) Enabled() bool {
	return s.Mode != Off
}

// Validate checks that an enabled spec has a positive period.
func (s Spec) Validate() error {
	switch s.Mode {
	case Off:
		return nil
	case Interval, Idle:
		if s.Period <= 0 {
			return domain.ErrInvalidSpec.WithDetailsf("%s period must be positive, got %s", s.Mode, s.Period)
		}
		return nil
	default:
		return domain.ErrInvalidSpec.WithDetailsf("unknown mode %d", int(s.Mode))
	}
}

// String formats the spec the way ParseSpec reads it.
func (s Spec) String() string {
	if !s.Enabled() {
		return "off"
	}
	return fmt.Sprintf("%s:%s", s.Mode, s.Period)
}

// ParseSpec parses "off", "interval:<duration>" or "idle:<duration>".
// An empty string means off.
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "off") {
		return Spec{}, nil
	}

	mode, period, ok := strings.Cut(s, ":")
	if !ok {
		return Spec{}, domain.ErrInvalidSpec.WithDetailsf("%q: want off, interval:<duration> or idle:<duration>", s)
	}

	var spec Spec
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "interval":
		spec.Mode = Interval
	case "idle":
		spec.Mode = Idle
	default:
		return Spec{}, domain.ErrInvalidSpec.WithDetailsf("%q: unknown mode %q", s, mode)
	}

	d, err := time.ParseDuration(strings.TrimSpace(period))
	if err != nil {
		return Spec{}, domain.ErrInvalidSpec.WithDetailsf("%q", s).WithCause(err)
	}
	spec.Period = d
	return spec, spec.Validate()
}
