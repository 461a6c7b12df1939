package quote

import "strings"

// maxLineLen is the accounting system's per-line address field limit.
const maxLineLen = 60

// SplitAddress splits a free-text, comma-separated address into the
// four fixed lines the accounting system's branch dataset expects.
// Consecutive segments are packed greedily while the combined length
// stays under the limit; anything left after line three is joined into
// line four. A single segment longer than the limit is truncated to it
// and the remainder dropped.
func SplitAddress(address string) [4]string {
	raw := strings.Split(address, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, strings.TrimSpace(p))
	}

	var result [4]string
	var remaining []string

	result[0], remaining = takeLine(parts)
	if len(remaining) > 0 {
		result[1], remaining = takeLine(remaining)
	}
	if len(remaining) > 0 {
		result[2], remaining = takeLine(remaining)
	}
	if len(remaining) > 0 {
		result[3] = strings.Join(remaining, ", ")
	}
	return result
}

// takeLine consumes segments for one output line.
func takeLine(parts []string) (string, []string) {
	if len(parts) == 0 {
		return "", nil
	}
	if len(parts[0]) > maxLineLen {
		return parts[0][:maxLineLen], parts[1:]
	}
	if len(parts) > 1 && len(parts[0])+len(parts[1])+len(", ") > maxLineLen {
		return parts[0], parts[1:]
	}
	if len(parts) > 1 {
		return parts[0] + ", " + parts[1], parts[2:]
	}
	return parts[0], parts[1:]
}
