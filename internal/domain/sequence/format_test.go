package sequence_test

import (
	"errors"
	"testing"

	"github.com/fazhub/faz-api/internal/domain/sequence"
)

func TestFormatID(t *testing.T) {
	got, err := sequence.FormatID("FAZ-RPT", 5, 42)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if got != "FAZ-RPT-00042" {
		t.Fatalf("expected FAZ-RPT-00042, got %s", got)
	}
}

func TestFormatIDWideValue(t *testing.T) {
	// Values wider than the pad width must not be truncated.
	got, err := sequence.FormatID("FAZ", 3, 123456)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if got != "FAZ-123456" {
		t.Fatalf("expected FAZ-123456, got %s", got)
	}
}

func TestFormatIDRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		width  int
		value  int64
	}{
		{"empty prefix", "", 5, 1},
		{"blank prefix", "   ", 5, 1},
		{"zero width", "FAZ", 0, 1},
		{"zero value", "FAZ", 5, 0},
		{"negative value", "FAZ", 5, -3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sequence.FormatID(tc.prefix, tc.width, tc.value)
			if !errors.Is(err, sequence.ErrBadFormat) {
				t.Fatalf("expected ErrBadFormat, got %v", err)
			}
		})
	}
}

func TestFormatLeagueID(t *testing.T) {
	got, err := sequence.FormatLeagueID("FAZ", "spl", 5, 7)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if got != "FAZ-SPL-00007" {
		t.Fatalf("expected FAZ-SPL-00007, got %s", got)
	}
}

func TestFormatLeagueIDMissingAbbrev(t *testing.T) {
	_, err := sequence.FormatLeagueID("FAZ", "", 5, 7)
	if !errors.Is(err, sequence.ErrBadFormat) {
		t.Fatalf("expected ErrBadFormat, got %v", err)
	}
}
