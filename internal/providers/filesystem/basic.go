package filesystem

import (
	"context"
	"fmt"
	"os"

	"github.com/fsgate/fsgate/internal/security"
	"github.com/fsgate/fsgate/internal/types"
)

// BasicOps handles basic file operations
type BasicOps struct {
	*Ops
}

// GetTools returns basic file operation tool definitions
func (b *BasicOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.read",
			Name:        "Read File",
			Description: "Read file contents",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
			},
			Returns: "string",
		},
		{
			ID:          "filesystem.write",
			Name:        "Write File",
			Description: "Write data to file (overwrites existing)",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
				{Name: "data", Type: "string", Description: "Data to write", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.append",
			Name:        "Append to File",
			Description: "Append data to end of file",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
				{Name: "data", Type: "string", Description: "Data to append", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.create",
			Name:        "Create File",
			Description: "Create a new empty file",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.delete",
			Name:        "Delete File",
			Description: "Delete a file or empty directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File or directory path", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.exists",
			Name:        "Check Existence",
			Description: "Check if a file or directory exists",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File or directory path", Required: true},
			},
			Returns: "boolean",
		},
	}
}

// Read reads file contents
func (b *BasicOps) Read(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := b.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}
	check, rejected := b.admitFile(path, nil)
	if rejected != nil {
		return rejected, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Failure(fmt.Sprintf("read failed: %v", err))
	}

	return Success(withWarnings(map[string]interface{}{
		"path":    path,
		"content": string(data),
		"size":    len(data),
	}, check))
}

// Write writes data to file (overwrites)
func (b *BasicOps) Write(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}
	data, ok := params["data"].(string)
	if !ok {
		return Failure("data parameter required")
	}

	path, rejected := b.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}
	// The size gate measures what is on disk; incoming content is checked
	// against the same limit here.
	if limit := b.maxFileSize(); limit > 0 && int64(len(data)) > limit {
		return Failure(fmt.Sprintf("content size %d exceeds limit %d", len(data), limit))
	}
	check, rejected := b.admitFile(path, &security.Overrides{SkipSize: true})
	if rejected != nil {
		return rejected, nil
	}

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return Failure(fmt.Sprintf("write failed: %v", err))
	}

	return Success(withWarnings(map[string]interface{}{
		"written": true,
		"path":    path,
		"size":    len(data),
	}, check))
}

// Append appends data to file
func (b *BasicOps) Append(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}
	data, ok := params["data"].(string)
	if !ok {
		return Failure("data parameter required")
	}

	path, rejected := b.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}
	check, rejected := b.admitFile(path, nil)
	if rejected != nil {
		return rejected, nil
	}
	limit := b.maxFileSize()
	existing := int64(0)
	if check.Info.Size != nil {
		existing = *check.Info.Size
	}
	if limit > 0 && existing+int64(len(data)) > limit {
		return Failure(fmt.Sprintf("content size %d exceeds limit %d", existing+int64(len(data)), limit))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Failure(fmt.Sprintf("append failed: %v", err))
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		return Failure(fmt.Sprintf("append failed: %v", err))
	}

	return Success(withWarnings(map[string]interface{}{
		"appended": true,
		"path":     path,
		"size":     existing + int64(len(data)),
	}, check))
}

// Create creates a new empty file
func (b *BasicOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := b.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}
	if _, rejected := b.admitFile(path, &security.Overrides{SkipSize: true}); rejected != nil {
		return rejected, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Failure(fmt.Sprintf("create failed: %v", err))
	}
	f.Close()

	return Success(map[string]interface{}{"created": true, "path": path})
}

// Delete deletes a file or empty directory
func (b *BasicOps) Delete(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := b.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	if err := os.Remove(path); err != nil {
		return Failure(fmt.Sprintf("delete failed: %v", err))
	}

	return Success(map[string]interface{}{"deleted": true, "path": path})
}

// Exists checks if a file or directory exists
func (b *BasicOps) Exists(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}

	path, rejected := b.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Success(map[string]interface{}{"exists": false, "path": path})
		}
		return Failure(fmt.Sprintf("stat failed: %v", err))
	}

	return Success(map[string]interface{}{
		"exists": true,
		"path":   path,
		"is_dir": info.IsDir(),
	})
}
