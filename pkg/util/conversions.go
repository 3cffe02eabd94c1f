package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHexColor converts "#RRGGBB" or "RRGGBB" to its integer value.
func ParseHexColor(s string) (int, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(cleaned) != 6 {
		return 0, fmt.Errorf("invalid hex color %q", s)
	}
	n, err := strconv.ParseUint(cleaned, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return int(n), nil
}

// FormatHexColor renders a colour as "#rrggbb". Zero renders as "".
func FormatHexColor(color int) string {
	if color == 0 {
		return ""
	}
	return fmt.Sprintf("#%06x", color&0xFFFFFF)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
