package format

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Number formats an int with K/M suffixes for display (e.g. 1500 → "1.5K").
func Number(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return strconv.Itoa(n)
}

// ViewCount renders an upstream view count. Plain integers get K/M
// suffixes; anything else (already "1.2M", "98K") passes through.
func ViewCount(raw string) string {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return raw
	}
	return Number(n)
}

// Episodes formats an episode count; 0 means unknown and renders as "".
func Episodes(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 episode"
	default:
		return strconv.Itoa(n) + " episodes"
	}
}

// Truncate returns s truncated to max runes with "..." suffix.
func Truncate(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
