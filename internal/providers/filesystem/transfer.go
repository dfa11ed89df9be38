package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsgate/fsgate/internal/security"
	"github.com/fsgate/fsgate/internal/types"
)

// TransferOps handles file manipulation (copy, move, rename)
type TransferOps struct {
	*Ops
}

// GetTools returns transfer operation tool definitions
func (t *TransferOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.copy",
			Name:        "Copy File",
			Description: "Copy a file",
			Parameters: []types.Parameter{
				{Name: "source", Type: "string", Description: "Source path", Required: true},
				{Name: "destination", Type: "string", Description: "Destination path", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.move",
			Name:        "Move File",
			Description: "Move or rename file/directory",
			Parameters: []types.Parameter{
				{Name: "source", Type: "string", Description: "Source path", Required: true},
				{Name: "destination", Type: "string", Description: "Destination path", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.rename",
			Name:        "Rename File",
			Description: "Rename file or directory in place",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
				{Name: "new_name", Type: "string", Description: "New name", Required: true},
			},
			Returns: "boolean",
		},
	}
}

// Copy copies a file
func (t *TransferOps) Copy(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	source, ok := stringParam(params, "source")
	if !ok {
		return Failure("source parameter required")
	}
	destination, ok := stringParam(params, "destination")
	if !ok {
		return Failure("destination parameter required")
	}

	src, rejected := t.admitPath(source)
	if rejected != nil {
		return rejected, nil
	}
	dst, rejected := t.admitPath(destination)
	if rejected != nil {
		return rejected, nil
	}
	// The source size gate also caps what lands at the destination.
	if _, rejected := t.admitFile(src, nil); rejected != nil {
		return rejected, nil
	}
	if _, rejected := t.admitFile(dst, &security.Overrides{SkipSize: true}); rejected != nil {
		return rejected, nil
	}

	if err := copyFile(src, dst); err != nil {
		return Failure(fmt.Sprintf("copy failed: %v", err))
	}

	return Success(map[string]interface{}{"copied": true, "source": src, "destination": dst})
}

// Move moves a file or directory
func (t *TransferOps) Move(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	source, ok := stringParam(params, "source")
	if !ok {
		return Failure("source parameter required")
	}
	destination, ok := stringParam(params, "destination")
	if !ok {
		return Failure("destination parameter required")
	}

	src, rejected := t.admitPath(source)
	if rejected != nil {
		return rejected, nil
	}
	dst, rejected := t.admitPath(destination)
	if rejected != nil {
		return rejected, nil
	}
	if _, rejected := t.admitFile(dst, &security.Overrides{SkipSize: true}); rejected != nil {
		return rejected, nil
	}

	if err := os.Rename(src, dst); err != nil {
		return Failure(fmt.Sprintf("move failed: %v", err))
	}

	return Success(map[string]interface{}{"moved": true, "source": src, "destination": dst})
}

// Rename renames a file or directory within its parent directory
func (t *TransferOps) Rename(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := stringParam(params, "path")
	if !ok {
		return Failure("path parameter required")
	}
	newName, ok := stringParam(params, "new_name")
	if !ok {
		return Failure("new_name parameter required")
	}
	if strings.ContainsRune(newName, os.PathSeparator) || newName == "." || newName == ".." {
		return Failure("new_name must be a bare file name")
	}

	src, rejected := t.admitPath(raw)
	if rejected != nil {
		return rejected, nil
	}
	dst := filepath.Join(filepath.Dir(src), newName)
	// The joined destination re-enters admission: a hostile name cannot
	// leave the allowed directories.
	dst, rejected = t.admitPath(dst)
	if rejected != nil {
		return rejected, nil
	}
	if _, rejected := t.admitFile(dst, &security.Overrides{SkipSize: true}); rejected != nil {
		return rejected, nil
	}

	if err := os.Rename(src, dst); err != nil {
		return Failure(fmt.Sprintf("rename failed: %v", err))
	}

	return Success(map[string]interface{}{"renamed": true, "path": dst})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory")
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
