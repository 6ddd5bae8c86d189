package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"golang.org/x/sys/unix"
)

// osStager implements FileStager on the local filesystem. Writes land
// atomically via a temp file and rename, so a crashed install never leaves a
// half-written script or unit file behind.
type osStager struct{}

// NewFileStager returns a FileStager operating on the local filesystem.
func NewFileStager() FileStager {
	return &osStager{}
}

func (s *osStager) CopyIfNewer(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return &FileStagerError{Path: src, Err: err}
	}

	// Destination at least as new as source means nothing to do.
	if dstInfo, err := os.Stat(dst); err == nil {
		if !dstInfo.ModTime().Before(srcInfo.ModTime()) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return &FileStagerError{Path: dst, Err: err}
	}

	return s.copy(src, dst)
}

func (s *osStager) CopyAlways(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return &FileStagerError{Path: src, Err: err}
	}
	return s.copy(src, dst)
}

func (s *osStager) EnsureDir(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return &FileStagerError{Path: path, Err: err}
	}
	return nil
}

func (s *osStager) AddExecuteBit(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &FileStagerError{Path: path, Err: err}
	}
	return chmod(path, info.Mode().Perm()|0o100)
}

func (s *osStager) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := s.checkFreeSpace(filepath.Dir(path), int64(len(data))); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return &FileStagerError{Path: path, Err: err}
	}
	return nil
}

func (s *osStager) copy(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return &FileStagerError{Path: src, Err: err}
	}
	if err := s.checkFreeSpace(filepath.Dir(dst), int64(len(data))); err != nil {
		return err
	}

	// Preserve an already-granted execute bit across updates.
	perm := os.FileMode(0o644)
	if dstInfo, err := os.Stat(dst); err == nil {
		perm = dstInfo.Mode().Perm()
	}

	if err := renameio.WriteFile(dst, data, perm); err != nil {
		return &FileStagerError{Path: dst, Err: err}
	}
	return nil
}

// checkFreeSpace rejects a write that cannot fit on the destination
// filesystem, so a full disk surfaces as a clean error instead of a partial
// temp file. Best effort: an unstatable directory is left for the write
// itself to report.
func (s *osStager) checkFreeSpace(dir string, size int64) error {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return nil
	}
	if available := int64(st.Bavail) * st.Bsize; available < size {
		return &FileStagerError{
			Path: dir,
			Err:  fmt.Errorf("%w: need %d bytes, %d available", ErrInsufficientSpace, size, int64(st.Bavail)*st.Bsize),
		}
	}
	return nil
}

func chmod(path string, perm os.FileMode) error {
	if err := os.Chmod(path, perm); err != nil {
		return &FileStagerError{Path: path, Err: err}
	}
	return nil
}
