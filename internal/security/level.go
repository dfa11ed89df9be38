package security

import (
	"fmt"
	"strings"
)

// Level controls which traversal, encoding, and symlink checks are active.
// Levels are strictly additive: strict runs every check moderate runs, and
// moderate runs every check permissive runs.
type Level int

const (
	LevelPermissive Level = iota
	LevelModerate
	LevelStrict
)

func (l Level) String() string {
	switch l {
	case LevelPermissive:
		return "permissive"
	case LevelModerate:
		return "moderate"
	case LevelStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permissive":
		return LevelPermissive, nil
	case "moderate":
		return LevelModerate, nil
	case "strict":
		return LevelStrict, nil
	default:
		return LevelModerate, fmt.Errorf("unknown security level: %q", s)
	}
}
