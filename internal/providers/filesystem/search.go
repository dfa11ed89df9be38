package filesystem

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fsgate/fsgate/internal/types"
)

// SearchOps handles file search operations
type SearchOps struct {
	*Ops
}

// searchMaxResults caps glob output so a pathological pattern cannot
// balloon a response.
const searchMaxResults = 1000

// GetTools returns search operation tool definitions
func (s *SearchOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.glob",
			Name:        "Glob Search",
			Description: "Find files matching a glob pattern (supports **)",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Base directory", Required: true},
				{Name: "pattern", Type: "string", Description: "Glob pattern, e.g. **/*.txt", Required: true},
			},
			Returns: "array",
		},
	}
}

// Glob finds files under an admitted base directory matching a pattern.
// Matching runs on a filesystem rooted at the base, so results cannot
// reference anything outside it.
func (s *SearchOps) Glob(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}
	pattern, ok := stringParam(params, "pattern")
	if !ok {
		return Failure("pattern parameter required")
	}

	base, rejected := s.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return Failure(fmt.Sprintf("invalid glob pattern %q", pattern))
	}

	matches, err := doublestar.Glob(os.DirFS(base), pattern)
	if err != nil {
		return Failure(fmt.Sprintf("glob failed: %v", err))
	}
	sort.Strings(matches)
	truncated := false
	if len(matches) > searchMaxResults {
		matches = matches[:searchMaxResults]
		truncated = true
	}

	return Success(map[string]interface{}{
		"path":      base,
		"pattern":   pattern,
		"matches":   matches,
		"count":     len(matches),
		"truncated": truncated,
	})
}
