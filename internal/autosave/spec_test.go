package autosave

import (
	"errors"
	"testing"
	"time"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    Spec
		wantErr bool
	}{
		{"", Spec{}, false},
		{"off", Spec{}, false},
		{"OFF", Spec{}, false},
		{"interval:5m", Spec{Mode: Interval, Period: 5 * time.Minute}, false},
		{"idle:30s", Spec{Mode: Idle, Period: 30 * time.Second}, false},
		{" idle : 1h30m ", Spec{Mode: Idle, Period: 90 * time.Minute}, false},
		{"interval", Spec{}, true},
		{"interval:soon", Spec{}, true},
		{"interval:0s", Spec{}, true},
		{"idle:-1s", Spec{}, true},
		{"hourly:1h", Spec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidSpec) {
					t.Errorf("error %v should match ErrInvalidSpec", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpec_StringRoundTrip(t *testing.T) {
	for _, s := range []Spec{{}, {Mode: Interval, Period: time.Minute}, {Mode: Idle, Period: 45 * time.Second}} {
		got, err := ParseSpec(s.String())
		if err != nil {
			t.Fatalf("ParseSpec(%q): %v", s.String(), err)
		}
		if got != s {
			t.Errorf("round trip of %+v gave %+v", s, got)
		}
	}
}
