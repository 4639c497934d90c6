package utils

import (
	"strconv"
	"strings"
)

// FilterNilProps drops nil-valued entries from a raw property map.
func FilterNilProps(in map[string]*string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[k] = *v
	}
	return out
}

// FullName joins first and last name, trimming the result.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// ParseScore parses a numeric score property, defaulting to 0 when unparsable.
func ParseScore(raw string) int {
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return score
}
