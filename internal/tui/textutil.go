package tui

import "strings"

// truncateEnd shortens s to at most limit runes, ending with an ellipsis
// when anything was cut.
func truncateEnd(s string, limit int) string {
	switch {
	case limit <= 0:
		return ""
	case len([]rune(s)) <= limit:
		return s
	case limit == 1:
		return "…"
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:limit-1]), " ") + "…"
}

// truncateMiddle keeps both ends of s, which is what matters for URLs.
func truncateMiddle(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	case limit == 1:
		return "…"
	}
	head := (limit - 1) / 2
	tail := limit - 1 - head
	return string(r[:head]) + "…" + string(r[len(r)-tail:])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
