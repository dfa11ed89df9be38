package filesystem

import (
	"github.com/fsgate/fsgate/internal/logging"
	"github.com/fsgate/fsgate/internal/security"
	"github.com/fsgate/fsgate/internal/types"
)

// Ops bundles the dependencies every filesystem tool shares. All tools
// admit caller paths through the path validator before touching disk;
// content-bearing tools additionally run the file-type validator.
type Ops struct {
	Store  *security.Store
	Paths  *security.PathValidator
	Files  *security.FileValidator
	Logger *logging.Logger
}

// admitPath runs path admission on one raw caller path. On rejection it
// returns a failed result carrying the validator's message.
func (ops *Ops) admitPath(raw string) (string, *types.Result) {
	check := ops.Paths.ValidatePath(raw)
	if !check.Valid {
		result, _ := Failure(check.Err)
		return "", result
	}
	return check.Path, nil
}

// admitFile runs the file-type policy on an admitted path.
func (ops *Ops) admitFile(canonical string, overrides *security.Overrides) (security.FileResult, *types.Result) {
	check := ops.Files.ValidateFile(canonical, overrides)
	if !check.Valid {
		result, _ := Failure(check.Err)
		return check, result
	}
	return check, nil
}

// maxFileSize reads the active content size limit.
func (ops *Ops) maxFileSize() int64 {
	return ops.Store.Current().MaxFileSize
}

// Success helper
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure helper
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

// withWarnings attaches non-fatal file-check warnings to a success payload.
func withWarnings(data map[string]interface{}, check security.FileResult) map[string]interface{} {
	if len(check.Warnings) > 0 {
		data["warnings"] = check.Warnings
	}
	return data
}

// stringParam extracts a required string parameter.
func stringParam(params map[string]interface{}, name string) (string, bool) {
	value, ok := params[name].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
