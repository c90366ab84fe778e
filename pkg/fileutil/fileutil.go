package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rohmanhakim/cobweb/pkg/failure"
)

// GetFileExtension extracts the lower-cased file extension from a path
// without the leading dot, or empty string if none.
func GetFileExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// EnsureDir creates dir joined with path if it does not exist yet.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	target := filepath.Join(append([]string{dir}, path...)...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message: fmt.Sprintf("%v", err),
			Cause:   ErrCausePathError,
			Path:    target,
		}
	}
	return nil
}

// WriteFileAtomic writes data next to path under a temporary name and
// renames it into place, so readers never observe a partial file.
// Missing parent directories are created.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) failure.ClassifiedError {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return writeError(err, path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return writeError(err, path)
	}
	if err := tmp.Close(); err != nil {
		return writeError(err, path)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return writeError(err, path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return writeError(err, path)
	}
	return nil
}

func writeError(err error, path string) *FileError {
	if errors.Is(err, syscall.ENOSPC) {
		return &FileError{Message: err.Error(), Retryable: true, Cause: ErrCauseDiskFull, Path: path}
	}
	return &FileError{Message: err.Error(), Cause: ErrCauseWriteFailure, Path: path}
}
