package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/fsgate/fsgate/internal/types"
)

// DirectoryOps handles directory operations
type DirectoryOps struct {
	*Ops
}

// treeDefaultMaxDepth bounds recursive walks when the caller passes none.
const treeDefaultMaxDepth = 8

// GetTools returns directory operation tool definitions
func (d *DirectoryOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.list",
			Name:        "List Directory",
			Description: "List directory contents",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Directory path", Required: true},
			},
			Returns: "array",
		},
		{
			ID:          "filesystem.mkdir",
			Name:        "Create Directory",
			Description: "Create directory (including parents)",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Directory path", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.tree",
			Name:        "Directory Tree",
			Description: "Recursively walk a directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Directory path", Required: true},
				{Name: "max_depth", Type: "number", Description: "Depth limit (default 8)", Required: false},
			},
			Returns: "array",
		},
	}
}

// List lists directory contents
func (d *DirectoryOps) List(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := d.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Failure(fmt.Sprintf("list failed: %v", err))
	}

	items := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		item := map[string]interface{}{
			"name":   entry.Name(),
			"is_dir": entry.IsDir(),
		}
		if info, err := entry.Info(); err == nil {
			item["size"] = info.Size()
			item["modified"] = info.ModTime().Unix()
		}
		items = append(items, item)
	}

	return Success(map[string]interface{}{
		"path":    path,
		"entries": items,
		"count":   len(items),
	})
}

// Mkdir creates a directory including parents
func (d *DirectoryOps) Mkdir(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := d.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return Failure(fmt.Sprintf("mkdir failed: %v", err))
	}

	return Success(map[string]interface{}{"created": true, "path": path})
}

// Tree recursively walks a directory up to a depth limit
func (d *DirectoryOps) Tree(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}
	maxDepth := treeDefaultMaxDepth
	if depth, ok := params["max_depth"].(float64); ok && depth > 0 {
		maxDepth = int(depth)
	}

	root, rejected := d.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if depthOf(rel) > maxDepth {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		mu.Lock()
		paths = append(paths, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return Failure(fmt.Sprintf("walk failed: %v", err))
	}
	sort.Strings(paths)

	return Success(map[string]interface{}{
		"path":    root,
		"entries": paths,
		"count":   len(paths),
	})
}

func depthOf(rel string) int {
	return strings.Count(rel, string(filepath.Separator)) + 1
}
