package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsgate/fsgate/internal/logging"
	"github.com/fsgate/fsgate/internal/security"
)

func newTestProvider(t *testing.T) (*Provider, *security.Store, string) {
	t.Helper()
	root := t.TempDir()
	policy := &security.Policy{
		Level:             security.LevelModerate,
		AllowedDirs:       []string{root},
		MaxFileSize:       1 << 20,
		AllowedExtensions: security.SetFromList([]string{"*"}),
		BlockedExtensions: map[string]struct{}{},
		AllowedMIMETypes:  map[string]struct{}{},
		BlockedMIMETypes:  map[string]struct{}{},
		AllowedCategories: map[security.Category]struct{}{},
		BlockedCategories: map[security.Category]struct{}{},
		AuditLog:          true,
	}
	store := security.NewStore(policy)
	audit := security.NewAudit(logging.NewNop())
	paths := security.NewPathValidator(store, audit, root, nil)
	files := security.NewFileValidator(store, nil)
	return NewProvider(store, paths, files, logging.NewNop()), store, root
}

func exec(t *testing.T, p *Provider, toolID string, params map[string]interface{}) map[string]interface{} {
	t.Helper()
	result, err := p.Execute(context.Background(), toolID, params, nil)
	require.NoError(t, err)
	require.True(t, result.Success, "tool %s failed: %v", toolID, result.Error)
	return result.Data
}

func execFail(t *testing.T, p *Provider, toolID string, params map[string]interface{}) string {
	t.Helper()
	result, err := p.Execute(context.Background(), toolID, params, nil)
	require.NoError(t, err)
	require.False(t, result.Success, "tool %s unexpectedly succeeded", toolID)
	require.NotNil(t, result.Error)
	return *result.Error
}

func TestReadWrite(t *testing.T) {
	p, _, root := newTestProvider(t)
	path := filepath.Join(root, "note.txt")

	data := exec(t, p, "filesystem.write", map[string]interface{}{
		"path": path,
		"data": "hello",
	})
	assert.Equal(t, true, data["written"])
	assert.Equal(t, path, data["path"])

	data = exec(t, p, "filesystem.read", map[string]interface{}{"path": path})
	assert.Equal(t, "hello", data["content"])
	assert.Equal(t, 5, data["size"])
}

func TestWriteRejectsOutsidePaths(t *testing.T) {
	p, _, _ := newTestProvider(t)

	msg := execFail(t, p, "filesystem.write", map[string]interface{}{
		"path": "/etc/passwd",
		"data": "x",
	})
	assert.Contains(t, msg, "outside the allowed directories")

	msg = execFail(t, p, "filesystem.read", map[string]interface{}{
		"path": "../../etc/passwd",
	})
	assert.Contains(t, msg, "traversal")
}

func TestWriteContentLimit(t *testing.T) {
	p, store, root := newTestProvider(t)
	policy := *store.Current()
	policy.MaxFileSize = 4
	store.Swap(&policy)

	msg := execFail(t, p, "filesystem.write", map[string]interface{}{
		"path": filepath.Join(root, "big.txt"),
		"data": "hello",
	})
	assert.Contains(t, msg, "exceeds limit")

	exec(t, p, "filesystem.write", map[string]interface{}{
		"path": filepath.Join(root, "ok.txt"),
		"data": "hi",
	})
}

func TestAppend(t *testing.T) {
	p, store, root := newTestProvider(t)
	path := filepath.Join(root, "log.txt")

	exec(t, p, "filesystem.append", map[string]interface{}{"path": path, "data": "one"})
	data := exec(t, p, "filesystem.append", map[string]interface{}{"path": path, "data": "two"})
	assert.Equal(t, int64(6), data["size"])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "onetwo", string(content))

	// The limit applies to existing plus appended content.
	policy := *store.Current()
	policy.MaxFileSize = 7
	store.Swap(&policy)
	msg := execFail(t, p, "filesystem.append", map[string]interface{}{"path": path, "data": "three"})
	assert.Contains(t, msg, "exceeds limit")
}

func TestCreateDeleteExists(t *testing.T) {
	p, _, root := newTestProvider(t)
	path := filepath.Join(root, "new.txt")

	exec(t, p, "filesystem.create", map[string]interface{}{"path": path})

	msg := execFail(t, p, "filesystem.create", map[string]interface{}{"path": path})
	assert.Contains(t, msg, "create failed")

	data := exec(t, p, "filesystem.exists", map[string]interface{}{"path": path})
	assert.Equal(t, true, data["exists"])
	assert.Equal(t, false, data["is_dir"])

	exec(t, p, "filesystem.delete", map[string]interface{}{"path": path})

	data = exec(t, p, "filesystem.exists", map[string]interface{}{"path": path})
	assert.Equal(t, false, data["exists"])
}

func TestListAndMkdir(t *testing.T) {
	p, _, root := newTestProvider(t)

	exec(t, p, "filesystem.mkdir", map[string]interface{}{"path": filepath.Join(root, "a", "b")})
	exec(t, p, "filesystem.write", map[string]interface{}{
		"path": filepath.Join(root, "a", "f.txt"),
		"data": "x",
	})

	data := exec(t, p, "filesystem.list", map[string]interface{}{"path": filepath.Join(root, "a")})
	assert.Equal(t, 2, data["count"])
	entries := data["entries"].([]map[string]interface{})
	names := map[string]bool{}
	for _, e := range entries {
		names[e["name"].(string)] = e["is_dir"].(bool)
	}
	assert.Equal(t, map[string]bool{"b": true, "f.txt": false}, names)
}

func TestTree(t *testing.T) {
	p, _, root := newTestProvider(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "x", "y", "z"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "x", "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "x", "y", "b.txt"), []byte("b"), 0o644))

	data := exec(t, p, "filesystem.tree", map[string]interface{}{"path": root})
	entries := data["entries"].([]string)
	assert.Contains(t, entries, filepath.Join("x", "a.txt"))
	assert.Contains(t, entries, filepath.Join("x", "y", "b.txt"))
	assert.Contains(t, entries, filepath.Join("x", "y", "z"))

	// Depth one sees only the top level.
	data = exec(t, p, "filesystem.tree", map[string]interface{}{
		"path":      root,
		"max_depth": float64(1),
	})
	assert.Equal(t, []string{"x"}, data["entries"].([]string))
}

func TestCopyMove(t *testing.T) {
	p, _, root := newTestProvider(t)
	src := filepath.Join(root, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dst := filepath.Join(root, "dst.txt")
	exec(t, p, "filesystem.copy", map[string]interface{}{"source": src, "destination": dst})

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	moved := filepath.Join(root, "moved.txt")
	exec(t, p, "filesystem.move", map[string]interface{}{"source": dst, "destination": moved})
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))

	execFail(t, p, "filesystem.copy", map[string]interface{}{
		"source":      src,
		"destination": "/tmp/fsgate-escape.txt",
	})
}

func TestRename(t *testing.T) {
	p, _, root := newTestProvider(t)
	src := filepath.Join(root, "old.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	data := exec(t, p, "filesystem.rename", map[string]interface{}{
		"path":     src,
		"new_name": "new.txt",
	})
	assert.Equal(t, filepath.Join(root, "new.txt"), data["path"])

	msg := execFail(t, p, "filesystem.rename", map[string]interface{}{
		"path":     filepath.Join(root, "new.txt"),
		"new_name": "sub/dir.txt",
	})
	assert.Contains(t, msg, "bare file name")
}

func TestStatAndSize(t *testing.T) {
	p, store, root := newTestProvider(t)
	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o644))

	data := exec(t, p, "filesystem.stat", map[string]interface{}{"path": path})
	assert.Equal(t, "main.go", data["name"])
	assert.Equal(t, "go", data["extension"])
	assert.Equal(t, "text/x-go", data["mime_type"])
	assert.Equal(t, "code", data["category"])
	assert.Equal(t, true, data["admitted"])

	// Stat describes policy-blocked files too; only the verdict flips.
	policy := *store.Current()
	policy.BlockedExtensions = security.SetFromList([]string{"go"})
	store.Swap(&policy)
	data = exec(t, p, "filesystem.stat", map[string]interface{}{"path": path})
	assert.Equal(t, false, data["admitted"])

	data = exec(t, p, "filesystem.size", map[string]interface{}{"path": path})
	assert.Equal(t, int64(12), data["size"])

	msg := execFail(t, p, "filesystem.size", map[string]interface{}{"path": root})
	assert.Contains(t, msg, "directory")
}

func TestGlob(t *testing.T) {
	p, _, root := newTestProvider(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "b.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), []byte("x"), 0o644))

	data := exec(t, p, "filesystem.glob", map[string]interface{}{
		"path":    root,
		"pattern": "**/*.go",
	})
	assert.Equal(t, []string{"a.go", filepath.Join("pkg", "b.go")}, data["matches"])
	assert.Equal(t, false, data["truncated"])

	msg := execFail(t, p, "filesystem.glob", map[string]interface{}{
		"path":    root,
		"pattern": "[",
	})
	assert.Contains(t, msg, "invalid glob pattern")
}

func TestBlockedExtensionRefused(t *testing.T) {
	p, store, root := newTestProvider(t)
	policy := *store.Current()
	policy.BlockedExtensions = security.SetFromList([]string{"exe"})
	store.Swap(&policy)

	msg := execFail(t, p, "filesystem.write", map[string]interface{}{
		"path": filepath.Join(root, "tool.exe"),
		"data": "MZ",
	})
	assert.Contains(t, msg, "blocked")
}

func TestMissingParams(t *testing.T) {
	p, _, _ := newTestProvider(t)

	execFail(t, p, "filesystem.read", map[string]interface{}{})
	execFail(t, p, "filesystem.write", map[string]interface{}{"path": "x"})
	execFail(t, p, "filesystem.copy", map[string]interface{}{"source": "x"})

	_, err := p.Execute(context.Background(), "filesystem.nope", map[string]interface{}{}, nil)
	assert.Error(t, err)
}

func TestDefinition(t *testing.T) {
	p, _, _ := newTestProvider(t)

	def := p.Definition()
	assert.Equal(t, "filesystem", def.ID)
	assert.Len(t, def.Tools, 15)

	seen := map[string]bool{}
	for _, tool := range def.Tools {
		assert.False(t, seen[tool.ID], "duplicate tool %s", tool.ID)
		seen[tool.ID] = true
	}
}
