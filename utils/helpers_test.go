package utils

import (
	"log/slog"
	"testing"
)

func TestRoundToTwo(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already rounded", 12.5, 12.5},
		{"half up", 1.005, 1.01},
		{"third", 100.0 / 3, 33.33},
		{"negative", -33.335, -33.34},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundToTwo(tt.in); got != tt.want {
				t.Errorf("RoundToTwo(%v): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := ParseOptionalUUID("")
	if err != nil || id != nil {
		t.Fatalf("empty string: got %v, %v", id, err)
	}
	if _, err := ParseOptionalUUID("not-a-uuid"); err == nil {
		t.Error("expected error for malformed id")
	}
	id, err = ParseOptionalUUID("6f1c2a58-7b7e-4d41-9a55-0d3b1c0e9f11")
	if err != nil || id == nil {
		t.Fatalf("valid id: got %v, %v", id, err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q): got %v, want %v", in, got, want)
		}
	}
}
