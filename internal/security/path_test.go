package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsgate/fsgate/internal/logging"
)

func testPolicy(level Level, dirs ...string) *Policy {
	return &Policy{
		Level:             level,
		AllowedDirs:       dirs,
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: SetFromList([]string{"*"}),
		BlockedExtensions: map[string]struct{}{},
		AllowedMIMETypes:  map[string]struct{}{},
		BlockedMIMETypes:  map[string]struct{}{},
		AllowedCategories: map[Category]struct{}{},
		BlockedCategories: map[Category]struct{}{},
		AuditLog:          true,
	}
}

func newTestValidator(t *testing.T, policy *Policy, home string) (*PathValidator, *Audit) {
	t.Helper()
	audit := NewAudit(logging.NewNop())
	store := NewStore(policy)
	return NewPathValidator(store, audit, home, nil), audit
}

func TestValidatePathEmptyInput(t *testing.T) {
	home := t.TempDir()
	v, audit := newTestValidator(t, testPolicy(LevelModerate, home), home)

	for _, raw := range []string{"", "   ", "\t"} {
		result := v.ValidatePath(raw)
		assert.False(t, result.Valid)
		assert.False(t, result.SecurityViolation, "blank input is malformed, not an attack")
	}
	assert.Equal(t, 0, audit.Len())
}

func TestValidatePathTraversal(t *testing.T) {
	home := t.TempDir()
	v, audit := newTestValidator(t, testPolicy(LevelModerate, home), home)

	tests := []string{
		"../etc/passwd",
		"foo/../../etc/passwd",
		`..\windows\system32`,
		"/..secret",
		"docs/..",
	}
	for _, raw := range tests {
		result := v.ValidatePath(raw)
		assert.False(t, result.Valid, "path %q should be rejected", raw)
		assert.True(t, result.SecurityViolation, "path %q should be a violation", raw)
	}

	events := audit.Events()
	require.Len(t, events, len(tests))
	for i, event := range events {
		assert.Equal(t, EventTraversal, event.Kind)
		assert.Equal(t, tests[i], event.Attempted)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
	}
}

func TestValidatePathContainment(t *testing.T) {
	base := t.TempDir()
	allowed := filepath.Join(base, "data")
	sibling := filepath.Join(base, "database")
	require.NoError(t, os.MkdirAll(allowed, 0o755))
	require.NoError(t, os.MkdirAll(sibling, 0o755))

	v, _ := newTestValidator(t, testPolicy(LevelModerate, allowed), allowed)

	// The allowed directory itself and its descendants pass.
	result := v.ValidatePath(allowed)
	assert.True(t, result.Valid)
	assert.Equal(t, allowed, result.Path)

	result = v.ValidatePath(filepath.Join(allowed, "notes", "a.txt"))
	assert.True(t, result.Valid)

	// A sibling sharing the allowed directory as a string prefix does not.
	result = v.ValidatePath(filepath.Join(sibling, "a.txt"))
	assert.False(t, result.Valid)
	assert.True(t, result.SecurityViolation)

	result = v.ValidatePath(string(filepath.Separator))
	assert.False(t, result.Valid)
	assert.True(t, result.SecurityViolation)
}

func TestValidatePathTildeExpansion(t *testing.T) {
	home := t.TempDir()
	v, _ := newTestValidator(t, testPolicy(LevelModerate, home), home)

	result := v.ValidatePath("~")
	require.True(t, result.Valid)
	assert.Equal(t, home, result.Path)

	result = v.ValidatePath("~/notes.txt")
	require.True(t, result.Valid)
	assert.Equal(t, filepath.Join(home, "notes.txt"), result.Path)

	// Bare relative input anchors to the home directory, never the CWD.
	result = v.ValidatePath("projects/readme.md")
	require.True(t, result.Valid)
	assert.Equal(t, filepath.Join(home, "projects", "readme.md"), result.Path)
}

func TestValidatePathEncoded(t *testing.T) {
	home := t.TempDir()

	t.Run("encoded traversal rejected at every level", func(t *testing.T) {
		for _, level := range []Level{LevelPermissive, LevelModerate, LevelStrict} {
			v, _ := newTestValidator(t, testPolicy(level, home), home)
			result := v.ValidatePath("%2e%2e%2fetc/passwd")
			assert.False(t, result.Valid, "level %s", level)
			assert.True(t, result.SecurityViolation, "level %s", level)
		}
	})

	t.Run("encoded separators flagged outside permissive", func(t *testing.T) {
		v, _ := newTestValidator(t, testPolicy(LevelModerate, home), home)
		result := v.ValidatePath("docs%2ffile.txt")
		assert.False(t, result.Valid)
		assert.True(t, result.SecurityViolation)

		v, _ = newTestValidator(t, testPolicy(LevelPermissive, home), home)
		result = v.ValidatePath("docs%2ffile.txt")
		assert.True(t, result.Valid)
	})

	t.Run("double-encoded traversal unwraps", func(t *testing.T) {
		v, _ := newTestValidator(t, testPolicy(LevelModerate, home), home)
		// %252e decodes to %2e; the decode loop has to take two passes
		// before the literal scan can see the dot segments.
		result := v.ValidatePath("%252e%252e/etc")
		assert.False(t, result.Valid)
		assert.True(t, result.SecurityViolation)
	})

	t.Run("malformed encoding rejected only under strict", func(t *testing.T) {
		v, _ := newTestValidator(t, testPolicy(LevelStrict, home), home)
		result := v.ValidatePath("~/file%zz.txt")
		assert.False(t, result.Valid)
		assert.True(t, result.SecurityViolation)

		v, _ = newTestValidator(t, testPolicy(LevelModerate, home), home)
		result = v.ValidatePath("~/file%zz.txt")
		assert.True(t, result.Valid)
	})
}

func TestValidatePathStrictPatterns(t *testing.T) {
	home := t.TempDir()

	strict, _ := newTestValidator(t, testPolicy(LevelStrict, home), home)
	moderate, _ := newTestValidator(t, testPolicy(LevelModerate, home), home)

	result := strict.ValidatePath("~/weird...name")
	assert.False(t, result.Valid)
	assert.True(t, result.SecurityViolation)

	result = moderate.ValidatePath("~/weird...name")
	assert.True(t, result.Valid)
}

func TestValidatePathIdempotent(t *testing.T) {
	home := t.TempDir()
	v, _ := newTestValidator(t, testPolicy(LevelModerate, home), home)

	first := v.ValidatePath("~/a/b.txt")
	require.True(t, first.Valid)

	second := v.ValidatePath(first.Path)
	require.True(t, second.Valid)
	assert.Equal(t, first.Path, second.Path)
}

func TestValidatePathSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	base := t.TempDir()
	allowed := filepath.Join(base, "allowed")
	outside := filepath.Join(base, "outside")
	require.NoError(t, os.MkdirAll(allowed, 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))

	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o600))

	escape := filepath.Join(allowed, "escape.txt")
	require.NoError(t, os.Symlink(secret, escape))

	inside := filepath.Join(allowed, "real.txt")
	require.NoError(t, os.WriteFile(inside, []byte("data"), 0o600))
	alias := filepath.Join(allowed, "alias.txt")
	require.NoError(t, os.Symlink(inside, alias))

	t.Run("strict rejects symlinks that resolve outside", func(t *testing.T) {
		v, audit := newTestValidator(t, testPolicy(LevelStrict, allowed), allowed)
		result := v.ValidatePath(escape)
		assert.False(t, result.Valid)
		assert.True(t, result.SecurityViolation)
		assert.Equal(t, 1, audit.Len())
	})

	t.Run("strict without follow rejects contained symlinks too", func(t *testing.T) {
		v, _ := newTestValidator(t, testPolicy(LevelStrict, allowed), allowed)
		result := v.ValidatePath(alias)
		assert.False(t, result.Valid)
		assert.True(t, result.SecurityViolation)
	})

	t.Run("follow admits contained targets only", func(t *testing.T) {
		policy := testPolicy(LevelStrict, allowed)
		policy.FollowSymlinks = true
		v, _ := newTestValidator(t, policy, allowed)

		result := v.ValidatePath(alias)
		assert.True(t, result.Valid)

		result = v.ValidatePath(escape)
		assert.False(t, result.Valid)
		assert.True(t, result.SecurityViolation)
	})

	t.Run("moderate never checks symlinks", func(t *testing.T) {
		v, _ := newTestValidator(t, testPolicy(LevelModerate, allowed), allowed)
		result := v.ValidatePath(escape)
		assert.True(t, result.Valid)
	})
}

func TestValidatePathPolicySwap(t *testing.T) {
	home := t.TempDir()
	other := t.TempDir()

	audit := NewAudit(logging.NewNop())
	store := NewStore(testPolicy(LevelModerate, home))
	v := NewPathValidator(store, audit, home, nil)

	require.True(t, v.ValidatePath(home).Valid)
	require.False(t, v.ValidatePath(other).Valid)

	store.Swap(testPolicy(LevelModerate, other))

	assert.False(t, v.ValidatePath(home).Valid)
	assert.True(t, v.ValidatePath(other).Valid)
}
