package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sizePattern is the strict <number><unit> grammar for size strings.
var sizePattern = regexp.MustCompile(`^([0-9]+)(B|KB|MB|GB|TB)$`)

var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseSize converts a size string such as "10MB" into bytes. The grammar
// is strict: an integer immediately followed by B, KB, MB, GB, or TB
// (unit case-insensitive). Anything else is a configuration error.
func ParseSize(s string) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	match := sizePattern.FindStringSubmatch(normalized)
	if match == nil {
		return 0, fmt.Errorf("invalid size %q: expected <number><unit> with unit B, KB, MB, GB, or TB", s)
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	unit := sizeUnits[match[2]]
	if n > 0 && n > (1<<62)/unit {
		return 0, fmt.Errorf("invalid size %q: overflows", s)
	}
	return n * unit, nil
}

// FormatSize renders a byte count with the largest exact unit, for
// diagnostics and default reporting.
func FormatSize(bytes int64) string {
	for _, unit := range []string{"TB", "GB", "MB", "KB"} {
		if factor := sizeUnits[unit]; bytes >= factor && bytes%factor == 0 {
			return fmt.Sprintf("%d%s", bytes/factor, unit)
		}
	}
	return fmt.Sprintf("%dB", bytes)
}
