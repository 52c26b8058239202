package sequence

import (
	"fmt"
	"strings"
)

// FormatID renders a sequence value as PREFIX-<zero-padded value>,
// e.g. FormatID("FAZ-RPT", 5, 42) -> "FAZ-RPT-00042".
func FormatID(prefix string, width int, value int64) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrBadFormat)
	}
	if width <= 0 {
		return "", fmt.Errorf("%w: non-positive width", ErrBadFormat)
	}
	if value <= 0 {
		return "", fmt.Errorf("%w: non-positive value", ErrBadFormat)
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, value), nil
}

// FormatLeagueID renders a sequence value as PREFIX-<ABBREV>-<zero-padded value>,
// e.g. FormatLeagueID("FAZ", "SPL", 5, 7) -> "FAZ-SPL-00007".
// A missing league abbreviation fails the whole assignment.
func FormatLeagueID(prefix, abbrev string, width int, value int64) (string, error) {
	if strings.TrimSpace(abbrev) == "" {
		return "", fmt.Errorf("%w: empty league abbreviation", ErrBadFormat)
	}
	return FormatID(prefix+"-"+strings.ToUpper(abbrev), width, value)
}
