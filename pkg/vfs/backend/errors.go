package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

// Path errors surfaced by every backend. Check them with errors.Is.
var (
	ErrEmpty          = sys.ErrEmpty
	ErrParentNotFound = sys.ErrParentNotFound
	ErrDoesNotExist   = fmt.Errorf("does not exist: %w", fs.ErrNotExist)
	ErrExistsAlready  = fmt.Errorf("exists already: %w", fs.ErrExist)
	ErrIsNotDir       = errors.New("is not a directory")
	ErrIsNotFile      = errors.New("is not a file")
	ErrIsNotSymlink   = errors.New("is not a symlink")
	ErrDirNotEmpty    = errors.New("directory not empty")
	ErrLinkLoop       = errors.New("too many levels of symbolic links")
	ErrIntoSelf       = errors.New("destination is inside source")
	ErrInvalidMode    = errors.New("invalid mode")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrNoOwner        = errors.New("ownership not available")
)

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}

// wrap maps storage level errors onto the backend error set so both backends report the
// same failures for the same situation.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return pathErr(op, path, ErrDoesNotExist)
	case errors.Is(err, fs.ErrExist):
		return pathErr(op, path, ErrExistsAlready)
	case errors.Is(err, syscall.ENOTDIR):
		return pathErr(op, path, ErrIsNotDir)
	case errors.Is(err, syscall.EISDIR):
		return pathErr(op, path, ErrIsNotFile)
	case errors.Is(err, syscall.ENOTEMPTY):
		return pathErr(op, path, ErrDirNotEmpty)
	case errors.Is(err, syscall.ELOOP):
		return pathErr(op, path, ErrLinkLoop)
	}
	return pathErr(op, path, err)
}
