package security

import (
	"sort"
	"sync/atomic"
)

// Policy is the active security policy snapshot. It is immutable once
// constructed: a configuration reload builds a new Policy and swaps it into
// the Store rather than mutating the one in-flight validations are reading.
type Policy struct {
	Level Level

	// AllowedDirs holds canonical absolute directories. Canonicalization
	// (tilde expansion, home-relative resolution, normalization) happens
	// once at resolve time so containment checks are exact-string.
	AllowedDirs []string

	// MaxFileSize is the byte limit for file-content operations.
	MaxFileSize int64

	AllowedExtensions map[string]struct{}
	BlockedExtensions map[string]struct{}
	AllowedMIMETypes  map[string]struct{}
	BlockedMIMETypes  map[string]struct{}
	AllowedCategories map[Category]struct{}
	BlockedCategories map[Category]struct{}

	// FollowSymlinks permits symlinks whose real target stays inside an
	// allowed directory. When false, strict level rejects any path that
	// resolves away from its canonical form.
	FollowSymlinks bool

	// AuditLog gates the structured log sink for security events. The
	// in-memory event list accumulates regardless.
	AuditLog bool
}

// SetFromList builds a membership set from a list of strings.
func SetFromList(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}

// ListFromSet returns the sorted members of a set, for diagnostics.
func ListFromSet(set map[string]struct{}) []string {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Store holds the active Policy behind an atomic pointer. Readers always
// observe a complete snapshot; Swap replaces it wholesale on reload.
type Store struct {
	policy atomic.Pointer[Policy]
}

// NewStore creates a store seeded with the given policy.
func NewStore(p *Policy) *Store {
	s := &Store{}
	s.policy.Store(p)
	return s
}

// Current returns the active policy snapshot.
func (s *Store) Current() *Policy {
	return s.policy.Load()
}

// Swap atomically replaces the active policy.
func (s *Store) Swap(p *Policy) {
	s.policy.Store(p)
}
