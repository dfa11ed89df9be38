package filesystem

import (
	"context"
	"fmt"
	"os"

	"github.com/fsgate/fsgate/internal/types"
)

// MetadataOps handles file metadata operations
type MetadataOps struct {
	*Ops
}

// GetTools returns metadata operation tool definitions
func (m *MetadataOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.stat",
			Name:        "File Stats",
			Description: "Get detailed file metadata",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "filesystem.size",
			Name:        "File Size",
			Description: "Get file size in bytes",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
			},
			Returns: "number",
		},
	}
}

// Stat returns detailed file metadata, including the derived type info
// from the file-type engine.
func (m *MetadataOps) Stat(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := m.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Failure(fmt.Sprintf("stat failed: %v", err))
	}

	// Diagnostics only: the check result is reported, not enforced, so a
	// stat on a policy-blocked file still describes it.
	check := m.Files.ValidateFile(path, nil)

	return Success(map[string]interface{}{
		"path":      path,
		"name":      info.Name(),
		"size":      info.Size(),
		"is_dir":    info.IsDir(),
		"mode":      info.Mode().String(),
		"modified":  info.ModTime().Unix(),
		"extension": check.Info.Extension,
		"mime_type": check.Info.MIMEType,
		"category":  string(check.Info.Category),
		"admitted":  check.Valid,
	})
}

// Size returns the file size in bytes
func (m *MetadataOps) Size(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := m.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Failure(fmt.Sprintf("stat failed: %v", err))
	}
	if info.IsDir() {
		return Failure("path is a directory")
	}

	return Success(map[string]interface{}{"path": path, "size": info.Size()})
}
