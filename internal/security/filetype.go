package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fsgate/fsgate/internal/monitoring"
)

// FileInfo is the derived metadata for a checked file. It is populated
// regardless of pass or fail, for diagnostics.
type FileInfo struct {
	Extension string   `json:"extension"`
	MIMEType  string   `json:"mime_type"`
	Category  Category `json:"category"`
	Size      *int64   `json:"size,omitempty"`
}

// FileResult is the outcome of one file-type policy check.
type FileResult struct {
	Valid    bool     `json:"valid"`
	Err      string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Info     FileInfo `json:"info"`
}

// Overrides relax individual file gates for a single call.
type Overrides struct {
	MaxFileSize   *int64
	SkipSize      bool
	SkipExtension bool
	SkipMIME      bool
	SkipCategory  bool
}

// FileValidator is the secondary policy engine. It assumes the path has
// already been admitted by PathValidator; its only side effect is an
// existence/size probe.
type FileValidator struct {
	store   *Store
	metrics *monitoring.Metrics
}

// NewFileValidator creates a file-type validator. Metrics may be nil.
func NewFileValidator(store *Store, metrics *monitoring.Metrics) *FileValidator {
	return &FileValidator{store: store, metrics: metrics}
}

// ValidateFile checks a canonical path against the size, extension, MIME,
// and category policy. Gates are independent and AND-combined; the first
// failure wins. A nil overrides applies the policy as configured.
func (v *FileValidator) ValidateFile(canonicalPath string, overrides *Overrides) FileResult {
	if overrides == nil {
		overrides = &Overrides{}
	}
	policy := v.store.Current()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(canonicalPath), "."))
	mimeType := MIMETypeForExtension(ext)
	result := FileResult{
		Info: FileInfo{
			Extension: ext,
			MIMEType:  mimeType,
			Category:  CategoryForFile(ext, mimeType),
		},
	}

	size, statErr := fileSize(canonicalPath)
	if size != nil {
		result.Info.Size = size
	}

	if !overrides.SkipSize {
		if statErr != nil {
			return v.fail(result, statErr.Error())
		}
		limit := policy.MaxFileSize
		if overrides.MaxFileSize != nil {
			limit = *overrides.MaxFileSize
		}
		if size != nil && limit > 0 && *size > limit {
			return v.fail(result, fmt.Sprintf("file size %d exceeds limit %d", *size, limit))
		}
	}

	if !overrides.SkipExtension {
		if _, blocked := policy.BlockedExtensions[ext]; blocked {
			return v.fail(result, fmt.Sprintf("extension %q is blocked", ext))
		}
		if len(policy.AllowedExtensions) > 0 && !setAllows(policy.AllowedExtensions, ext) {
			return v.fail(result, fmt.Sprintf("extension %q is not allowed", ext))
		}
		if policy.Level == LevelStrict && IsDangerousExtension(ext) {
			return v.fail(result, fmt.Sprintf("extension %q is blocked at strict level", ext))
		}
	}

	if !overrides.SkipMIME {
		if mimeAllowed(policy.BlockedMIMETypes, mimeType) {
			return v.fail(result, fmt.Sprintf("MIME type %q is blocked", mimeType))
		}
		if len(policy.AllowedMIMETypes) > 0 && !mimeAllowed(policy.AllowedMIMETypes, mimeType) {
			return v.fail(result, fmt.Sprintf("MIME type %q is not allowed", mimeType))
		}
	}

	category := result.Info.Category
	if !overrides.SkipCategory {
		if _, blocked := policy.BlockedCategories[category]; blocked {
			return v.fail(result, fmt.Sprintf("category %q is blocked", category))
		}
		if len(policy.AllowedCategories) > 0 {
			if _, ok := policy.AllowedCategories[category]; !ok {
				return v.fail(result, fmt.Sprintf("category %q is not allowed", category))
			}
		}
	}
	if policy.Level == LevelStrict && (category == CategoryExecutable || category == CategoryArchive) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("category %q is admitted but flagged at strict level", category))
	}

	// Content sniffing is advisory: a disagreement with the static table
	// surfaces as a warning, never a failure.
	if size != nil {
		if detected, err := mimetype.DetectFile(canonicalPath); err == nil {
			if !detected.Is(mimeType) && detected.String() != DefaultMIMEType {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("content looks like %q, extension suggests %q", detected.String(), mimeType))
			}
		}
	}

	result.Valid = true
	if v.metrics != nil {
		v.metrics.IncFileValidation(true)
	}
	return result
}

func (v *FileValidator) fail(result FileResult, msg string) FileResult {
	result.Valid = false
	result.Err = msg
	if v.metrics != nil {
		v.metrics.IncFileValidation(false)
	}
	return result
}

// fileSize probes the target. A missing file is not an error; the size gate
// simply has nothing to compare. Other filesystem failures are mapped into
// the result rather than propagated.
func fileSize(path string) (*int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, errors.New("file is not accessible")
		}
		return nil, errors.New("file could not be inspected")
	}
	if info.IsDir() {
		return nil, nil
	}
	size := info.Size()
	return &size, nil
}

// setAllows reports set membership with wildcard support.
func setAllows(set map[string]struct{}, item string) bool {
	if _, ok := set[item]; ok {
		return true
	}
	_, ok := set["*"]
	return ok
}

// mimeAllowed matches exact entries, the bare wildcard, and
// "type/*" prefix wildcards.
func mimeAllowed(set map[string]struct{}, mimeType string) bool {
	if setAllows(set, mimeType) {
		return true
	}
	if idx := strings.Index(mimeType, "/"); idx > 0 {
		if _, ok := set[mimeType[:idx]+"/*"]; ok {
			return true
		}
	}
	return false
}
