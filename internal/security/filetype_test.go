package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestValidateFileSize(t *testing.T) {
	dir := t.TempDir()
	policy := testPolicy(LevelModerate, dir)
	policy.MaxFileSize = 10
	v := NewFileValidator(NewStore(policy), nil)

	atLimit := writeTestFile(t, dir, "at.txt", 10)
	over := writeTestFile(t, dir, "over.txt", 11)

	result := v.ValidateFile(atLimit, nil)
	assert.True(t, result.Valid, "a file exactly at the limit passes")
	require.NotNil(t, result.Info.Size)
	assert.Equal(t, int64(10), *result.Info.Size)

	result = v.ValidateFile(over, nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Err, "exceeds limit")
	require.NotNil(t, result.Info.Size, "info is populated on failure too")

	// A missing file has no size to compare; the remaining gates decide.
	result = v.ValidateFile(filepath.Join(dir, "missing.txt"), nil)
	assert.True(t, result.Valid)
	assert.Nil(t, result.Info.Size)
}

func TestValidateFileExtension(t *testing.T) {
	dir := t.TempDir()

	t.Run("blocked wins over allowed", func(t *testing.T) {
		policy := testPolicy(LevelModerate, dir)
		policy.BlockedExtensions = SetFromList([]string{"exe"})
		v := NewFileValidator(NewStore(policy), nil)

		result := v.ValidateFile(filepath.Join(dir, "tool.exe"), nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Err, "blocked")
	})

	t.Run("allow list restricts", func(t *testing.T) {
		policy := testPolicy(LevelModerate, dir)
		policy.AllowedExtensions = SetFromList([]string{"txt", "md"})
		v := NewFileValidator(NewStore(policy), nil)

		assert.True(t, v.ValidateFile(filepath.Join(dir, "a.txt"), nil).Valid)
		assert.False(t, v.ValidateFile(filepath.Join(dir, "a.png"), nil).Valid)
	})

	t.Run("strict rejects dangerous extensions despite wildcard", func(t *testing.T) {
		policy := testPolicy(LevelStrict, dir)
		v := NewFileValidator(NewStore(policy), nil)

		result := v.ValidateFile(filepath.Join(dir, "tool.exe"), nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Err, "strict level")

		policy = testPolicy(LevelModerate, dir)
		v = NewFileValidator(NewStore(policy), nil)
		assert.True(t, v.ValidateFile(filepath.Join(dir, "tool.exe"), nil).Valid)
	})
}

func TestValidateFileMIME(t *testing.T) {
	dir := t.TempDir()

	policy := testPolicy(LevelModerate, dir)
	policy.AllowedMIMETypes = SetFromList([]string{"text/*", "application/json"})
	v := NewFileValidator(NewStore(policy), nil)

	assert.True(t, v.ValidateFile(filepath.Join(dir, "a.txt"), nil).Valid)
	assert.True(t, v.ValidateFile(filepath.Join(dir, "a.json"), nil).Valid)

	result := v.ValidateFile(filepath.Join(dir, "a.png"), nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Err, "not allowed")
	assert.Equal(t, "image/png", result.Info.MIMEType)

	policy = testPolicy(LevelModerate, dir)
	policy.BlockedMIMETypes = SetFromList([]string{"image/*"})
	v = NewFileValidator(NewStore(policy), nil)
	assert.False(t, v.ValidateFile(filepath.Join(dir, "a.png"), nil).Valid)
	assert.True(t, v.ValidateFile(filepath.Join(dir, "a.txt"), nil).Valid)
}

func TestValidateFileCategory(t *testing.T) {
	dir := t.TempDir()

	policy := testPolicy(LevelModerate, dir)
	policy.AllowedCategories = map[Category]struct{}{CategoryText: {}, CategoryCode: {}}
	v := NewFileValidator(NewStore(policy), nil)

	assert.True(t, v.ValidateFile(filepath.Join(dir, "a.txt"), nil).Valid)
	assert.True(t, v.ValidateFile(filepath.Join(dir, "main.go"), nil).Valid)

	result := v.ValidateFile(filepath.Join(dir, "a.png"), nil)
	assert.False(t, result.Valid)
	assert.Equal(t, CategoryImage, result.Info.Category)

	policy = testPolicy(LevelModerate, dir)
	policy.BlockedCategories = map[Category]struct{}{CategoryArchive: {}}
	v = NewFileValidator(NewStore(policy), nil)
	assert.False(t, v.ValidateFile(filepath.Join(dir, "a.zip"), nil).Valid)
}

func TestValidateFileOverrides(t *testing.T) {
	dir := t.TempDir()
	policy := testPolicy(LevelModerate, dir)
	policy.MaxFileSize = 5
	policy.BlockedExtensions = SetFromList([]string{"bin"})
	v := NewFileValidator(NewStore(policy), nil)

	big := writeTestFile(t, dir, "big.bin", 100)

	result := v.ValidateFile(big, nil)
	assert.False(t, result.Valid)

	result = v.ValidateFile(big, &Overrides{SkipSize: true, SkipExtension: true})
	assert.True(t, result.Valid)

	limit := int64(200)
	result = v.ValidateFile(big, &Overrides{MaxFileSize: &limit, SkipExtension: true})
	assert.True(t, result.Valid)

	limit = 50
	result = v.ValidateFile(big, &Overrides{MaxFileSize: &limit, SkipExtension: true})
	assert.False(t, result.Valid)
}

func TestValidateFileStrictWarnings(t *testing.T) {
	dir := t.TempDir()
	policy := testPolicy(LevelStrict, dir)
	v := NewFileValidator(NewStore(policy), nil)

	result := v.ValidateFile(filepath.Join(dir, "bundle.zip"), nil)
	require.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "flagged at strict level")
}

func TestMIMETables(t *testing.T) {
	assert.Equal(t, "text/plain", MIMETypeForExtension("txt"))
	assert.Equal(t, "image/png", MIMETypeForExtension("PNG"))
	assert.Equal(t, DefaultMIMEType, MIMETypeForExtension("xyzzy"))

	// Extension overrides beat the MIME prefix.
	assert.Equal(t, CategoryCode, CategoryForFile("go", MIMETypeForExtension("go")))
	assert.Equal(t, CategoryExecutable, CategoryForFile("jar", MIMETypeForExtension("jar")))
	assert.Equal(t, CategoryText, CategoryForFile("txt", "text/plain"))
	assert.Equal(t, CategoryMedia, CategoryForFile("mp3", "audio/mpeg"))
	assert.Equal(t, CategoryUnknown, CategoryForFile("xyzzy", DefaultMIMEType))

	assert.True(t, IsDangerousExtension("exe"))
	assert.True(t, IsDangerousExtension("DLL"))
	assert.False(t, IsDangerousExtension("txt"))
}
