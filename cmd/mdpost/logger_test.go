package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		quiet     bool
		verbose   bool
		wantDebug bool
		wantWarn  bool
	}{
		{"default shows warnings", false, false, false, true},
		{"verbose shows debug", false, true, true, true},
		{"quiet hides warnings", true, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.quiet, tt.verbose)

			logger.Debug().Msg("debug-line")
			logger.Warn().Msg("warn-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.wantDebug {
				t.Errorf("debug shown = %v, want %v (%q)", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "warn-line"); got != tt.wantWarn {
				t.Errorf("warn shown = %v, want %v (%q)", got, tt.wantWarn, out)
			}
		})
	}
}
