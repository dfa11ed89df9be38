package security

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsgate/fsgate/internal/monitoring"
)

// PathResult is the outcome of one path admission check. A valid result
// always carries the canonical absolute path. SecurityViolation
// distinguishes policy-bypass attempts from malformed input.
type PathResult struct {
	Valid             bool   `json:"valid"`
	Path              string `json:"path,omitempty"`
	Err               string `json:"error,omitempty"`
	SecurityViolation bool   `json:"security_violation"`
}

// traversalPattern is one literal marker scanned for in raw input before
// any normalization. Matching the raw string keeps intent visible:
// resolution would silently consume the traversal segments.
type traversalPattern struct {
	substr string
	prefix string
	suffix string
}

var baseTraversalPatterns = []traversalPattern{
	{substr: "../"},
	{substr: `..\`},
	{prefix: "/.."},
	{suffix: ".."},
}

var strictTraversalPatterns = []traversalPattern{
	{substr: "..."},
	{suffix: "/.."},
}

// encoded traversal markers, scanned case-insensitively on the raw input
var encodedTraversalMarkers = []string{"%2e%2e%2f", "%2e%2e"}

// encoded characters flagged outside permissive level
var encodedSuspectMarkers = []string{"%2f", "%5c", "%00", "%20"}

// PathValidator is the admission-control engine. It is safe for concurrent
// use: each call reads one policy snapshot from the store.
type PathValidator struct {
	store   *Store
	audit   *Audit
	home    string
	metrics *monitoring.Metrics
}

// NewPathValidator creates a validator. The home directory anchors tilde
// expansion and relative input resolution; when empty it is taken from the
// environment. Metrics may be nil.
func NewPathValidator(store *Store, audit *Audit, home string, metrics *monitoring.Metrics) *PathValidator {
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		} else {
			home = "/"
		}
	}
	return &PathValidator{
		store:   store,
		audit:   audit,
		home:    filepath.Clean(home),
		metrics: metrics,
	}
}

// ValidatePath runs the ordered admission gates against a raw caller path
// and returns the canonical path or a rejection. Gates short-circuit on the
// first failure.
func (v *PathValidator) ValidatePath(raw string) PathResult {
	policy := v.store.Current()

	// Gate 1: input sanity. Malformed input is a plain validation error,
	// not a violation, and produces no event.
	if strings.TrimSpace(raw) == "" {
		return v.finish(PathResult{Err: "path must be a non-empty string"})
	}

	// Gate 2: literal traversal scan on the raw input.
	if pattern, found := scanTraversal(raw, policy.Level); found {
		return v.reject(policy, EventTraversal, raw, "",
			fmt.Sprintf("path contains traversal pattern %q", pattern))
	}

	// Gate 3: canonicalization. Relative inputs resolve against the home
	// directory, never the working directory.
	canonical := v.canonicalize(raw)

	// Gate 4: percent-encoding scan, then re-scan of the decoded form.
	if result, rejected := v.scanEncoded(policy, raw); rejected {
		return result
	}

	// Gate 5: containment against the allowed directories.
	if !isContained(canonical, policy.AllowedDirs) {
		return v.reject(policy, EventUnauthorizedAccess, raw, canonical,
			"path is outside the allowed directories")
	}

	// Gate 6: symlink escape, strict level only, existing paths only.
	if policy.Level == LevelStrict {
		if result, rejected := v.checkSymlink(policy, raw, canonical); rejected {
			return result
		}
	}

	return v.finish(PathResult{Valid: true, Path: canonical})
}

// Home returns the directory anchoring relative resolution.
func (v *PathValidator) Home() string {
	return v.home
}

func (v *PathValidator) canonicalize(raw string) string {
	switch {
	case raw == "~":
		return v.home
	case strings.HasPrefix(raw, "~/"):
		return filepath.Join(v.home, raw[2:])
	case filepath.IsAbs(raw):
		return filepath.Clean(raw)
	default:
		return filepath.Join(v.home, raw)
	}
}

// scanTraversal scans a literal string for traversal markers. Strict level
// widens the pattern set.
func scanTraversal(s string, level Level) (string, bool) {
	patterns := baseTraversalPatterns
	if level == LevelStrict {
		patterns = append(append([]traversalPattern{}, patterns...), strictTraversalPatterns...)
	}
	for _, p := range patterns {
		switch {
		case p.substr != "" && strings.Contains(s, p.substr):
			return p.substr, true
		case p.prefix != "" && strings.HasPrefix(s, p.prefix):
			return p.prefix, true
		case p.suffix != "" && strings.HasSuffix(s, p.suffix):
			return p.suffix, true
		}
	}
	return "", false
}

func (v *PathValidator) scanEncoded(policy *Policy, raw string) (PathResult, bool) {
	lower := strings.ToLower(raw)
	for _, marker := range encodedTraversalMarkers {
		if strings.Contains(lower, marker) {
			return v.reject(policy, EventTraversal, raw, "",
				fmt.Sprintf("path contains encoded traversal marker %q", marker)), true
		}
	}
	if policy.Level != LevelPermissive {
		for _, marker := range encodedSuspectMarkers {
			if strings.Contains(lower, marker) {
				return v.reject(policy, EventTraversal, raw, "",
					fmt.Sprintf("path contains encoded character %q", marker)), true
			}
		}
	}

	// Re-run the raw traversal scan on each successive decoding until the
	// string stops changing; double-encoded input unwraps here.
	current := raw
	for range [4]struct{}{} {
		decoded, err := url.PathUnescape(current)
		if err != nil {
			if policy.Level == LevelStrict {
				return v.reject(policy, EventTraversal, raw, "",
					"path contains a malformed percent-encoding"), true
			}
			break
		}
		if decoded == current {
			break
		}
		if pattern, found := scanTraversal(decoded, policy.Level); found {
			return v.reject(policy, EventTraversal, raw, "",
				fmt.Sprintf("decoded path contains traversal pattern %q", pattern)), true
		}
		current = decoded
	}
	return PathResult{}, false
}

// isContained reports whether the canonical path equals, or is a
// separator-bounded descendant of, one of the allowed directories.
// Matching is exact-string on all platforms; no case folding.
func isContained(canonical string, allowedDirs []string) bool {
	for _, dir := range allowedDirs {
		if canonical == dir {
			return true
		}
		prefix := dir
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(canonical, prefix) {
			return true
		}
	}
	return false
}

func (v *PathValidator) checkSymlink(policy *Policy, raw, canonical string) (PathResult, bool) {
	if _, err := os.Lstat(canonical); err != nil {
		return PathResult{}, false
	}
	real, err := filepath.EvalSymlinks(canonical)
	if err != nil {
		// Resolution failed on an existing path: permission or a broken
		// link. Fail closed, but as a plain error without an event.
		return v.finish(PathResult{Err: "path could not be resolved"}), true
	}
	if real == canonical {
		return PathResult{}, false
	}
	if !policy.FollowSymlinks {
		return v.reject(policy, EventUnauthorizedAccess, raw, canonical,
			"path resolves through a symbolic link"), true
	}
	if !isContained(real, policy.AllowedDirs) {
		return v.reject(policy, EventUnauthorizedAccess, raw, canonical,
			"path resolves outside the allowed directories"), true
	}
	return PathResult{}, false
}

func (v *PathValidator) reject(policy *Policy, kind EventKind, attempted, resolved, msg string) PathResult {
	if v.audit != nil {
		v.audit.Record(kind, attempted, resolved, policy.AuditLog)
	}
	if v.metrics != nil {
		v.metrics.IncViolation(string(kind))
	}
	return v.finish(PathResult{Err: msg, SecurityViolation: true})
}

func (v *PathValidator) finish(result PathResult) PathResult {
	if v.metrics != nil {
		v.metrics.IncPathValidation(result.Valid)
	}
	return result
}
