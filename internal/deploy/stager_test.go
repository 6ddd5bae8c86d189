package deploy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWithMtime(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestCopyIfNewer_CopiesWhenDestinationAbsent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.py")
	dst := filepath.Join(dir, "dst.py")
	writeWithMtime(t, src, "print('hi')\n", time.Now())

	stager := NewFileStager()
	require.NoError(t, stager.CopyIfNewer(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
}

func TestCopyIfNewer_SkipsWhenDestinationNewer(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.py")
	dst := filepath.Join(dir, "dst.py")
	now := time.Now()
	writeWithMtime(t, src, "old source", now.Add(-time.Hour))
	writeWithMtime(t, dst, "deployed edit", now)

	stager := NewFileStager()
	require.NoError(t, stager.CopyIfNewer(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "deployed edit", string(data), "newer destination must not be overwritten")
}

func TestCopyIfNewer_OverwritesStaleDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.py")
	dst := filepath.Join(dir, "dst.py")
	now := time.Now()
	writeWithMtime(t, dst, "stale", now.Add(-time.Hour))
	writeWithMtime(t, src, "fresh", now)

	stager := NewFileStager()
	require.NoError(t, stager.CopyIfNewer(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestCopyIfNewer_PreservesExecuteBitOnUpdate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.py")
	dst := filepath.Join(dir, "dst.py")
	now := time.Now()
	writeWithMtime(t, dst, "stale", now.Add(-time.Hour))
	require.NoError(t, os.Chmod(dst, 0o744))
	writeWithMtime(t, src, "fresh", now)

	stager := NewFileStager()
	require.NoError(t, stager.CopyIfNewer(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o744), info.Mode().Perm())
}

func TestCopyIfNewer_MissingSource(t *testing.T) {
	dir := t.TempDir()
	stager := NewFileStager()

	err := stager.CopyIfNewer(filepath.Join(dir, "absent.py"), filepath.Join(dir, "dst.py"))
	var fsErr *FileStagerError
	require.ErrorAs(t, err, &fsErr)
	assert.Contains(t, fsErr.Path, "absent.py")
}

func TestCopyAlways_OverwritesNewerDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.service")
	dst := filepath.Join(dir, "deployed.service")
	now := time.Now()
	writeWithMtime(t, src, "[Unit]\n", now.Add(-time.Hour))
	writeWithMtime(t, dst, "[Unit]\nDescription=edited\n", now)

	stager := NewFileStager()
	require.NoError(t, stager.CopyAlways(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "[Unit]\n", string(data), "unit files are always overwritten")
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "var", "log", "bhs")
	stager := NewFileStager()

	require.NoError(t, stager.EnsureDir(dir, 0o755))
	require.NoError(t, stager.EnsureDir(dir, 0o755))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAddExecuteBit_LeavesOtherBitsUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.py")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/python3\n"), 0o640))

	stager := NewFileStager()
	require.NoError(t, stager.AddExecuteBit(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o740), info.Mode().Perm())

	// Applying twice changes nothing.
	require.NoError(t, stager.AddExecuteBit(path))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o740), info.Mode().Perm())
}

func TestAddExecuteBit_MissingFile(t *testing.T) {
	stager := NewFileStager()
	err := stager.AddExecuteBit(filepath.Join(t.TempDir(), "absent.py"))

	var fsErr *FileStagerError
	require.ErrorAs(t, err, &fsErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFile_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.env")

	stager := NewFileStager()
	require.NoError(t, stager.WriteFile(path, []byte("BHS_DB_HOST=db.local\n"), 0o600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
