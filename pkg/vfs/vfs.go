package vfs

import (
	"io"
	"io/fs"

	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

// Abs returns path in absolute clean form.
func Abs(path string) (string, error) {
	return Current().Abs(path)
}

// AllDirs returns every directory beneath path, recursively.
func AllDirs(path string) ([]string, error) {
	return Current().AllDirs(path)
}

// AllFiles returns every file beneath path, recursively.
func AllFiles(path string) ([]string, error) {
	return Current().AllFiles(path)
}

// AllPaths returns every path beneath path, recursively.
func AllPaths(path string) ([]string, error) {
	return Current().AllPaths(path)
}

// Append opens path for appending, creating it if needed.
func Append(path string) (io.WriteCloser, error) {
	return Current().Append(path)
}

// Chmod sets mode on path and everything beneath it.
func Chmod(path string, mode fs.FileMode) error {
	return Current().Chmod(path, mode)
}

// ChmodB returns a chmod builder for path.
func ChmodB(path string) (*backend.Chmod, error) {
	return Current().ChmodB(path)
}

// Chown sets ownership on path and everything beneath it.
func Chown(path string, uid, gid int) error {
	return Current().Chown(path, uid, gid)
}

// ChownB returns a chown builder for path.
func ChownB(path string) (*backend.Chown, error) {
	return Current().ChownB(path)
}

// Copy copies src to dst recursively.
func Copy(src, dst string) error {
	return Current().Copy(src, dst)
}

// CopyB returns a copy builder.
func CopyB(src, dst string) (*backend.Copier, error) {
	return Current().CopyB(src, dst)
}

// Create opens path for writing, truncating it.
func Create(path string) (io.WriteCloser, error) {
	return Current().Create(path)
}

// Cwd returns the working directory of the current backend.
func Cwd() (string, error) {
	return Current().Cwd()
}

// Dirs returns the directories directly beneath path.
func Dirs(path string) ([]string, error) {
	return Current().Dirs(path)
}

// Entries returns a traversal builder rooted at path.
func Entries(path string) (*backend.Entries, error) {
	return Current().Entries(path)
}

// Entry returns the entry for path.
func Entry(path string) (backend.Entry, error) {
	return Current().Entry(path)
}

// Exists reports whether path exists. A dangling symlink exists.
func Exists(path string) bool {
	return Current().Exists(path)
}

// Files returns the files directly beneath path.
func Files(path string) ([]string, error) {
	return Current().Files(path)
}

// Gid returns the group id owning path.
func Gid(path string) (int, error) {
	return Current().Gid(path)
}

// IsExec reports whether path has any execute bit set.
func IsExec(path string) bool {
	return Current().IsExec(path)
}

// IsDir reports whether path is a directory, without following symlinks.
func IsDir(path string) bool {
	return Current().IsDir(path)
}

// IsFile reports whether path is a regular file, without following symlinks.
func IsFile(path string) bool {
	return Current().IsFile(path)
}

// IsReadonly reports whether path has no write bits set.
func IsReadonly(path string) bool {
	return Current().IsReadonly(path)
}

// IsSymlink reports whether path is a symlink.
func IsSymlink(path string) bool {
	return Current().IsSymlink(path)
}

// IsSymlinkDir reports whether path is a symlink to a directory.
func IsSymlinkDir(path string) bool {
	return Current().IsSymlinkDir(path)
}

// IsSymlinkFile reports whether path is a symlink to a regular file.
func IsSymlinkFile(path string) bool {
	return Current().IsSymlinkFile(path)
}

// MkdirM creates path and its parents with mode.
func MkdirM(path string, mode fs.FileMode) (string, error) {
	return Current().MkdirM(path, mode)
}

// MkdirP creates path and its parents.
func MkdirP(path string) (string, error) {
	return Current().MkdirP(path)
}

// Mkfile creates an empty file if it does not exist.
func Mkfile(path string) (string, error) {
	return Current().Mkfile(path)
}

// MkfileM creates an empty file if it does not exist and sets mode on it.
func MkfileM(path string, mode fs.FileMode) (string, error) {
	return Current().MkfileM(path, mode)
}

// Mode returns the mode of path, without following symlinks.
func Mode(path string) (fs.FileMode, error) {
	return Current().Mode(path)
}

// Move moves src to dst.
func Move(src, dst string) error {
	return Current().Move(src, dst)
}

// Open opens a file for reading.
func Open(path string) (io.ReadSeekCloser, error) {
	return Current().Open(path)
}

// Owner returns the user and group ids owning path.
func Owner(path string) (uid, gid int, err error) {
	return Current().Owner(path)
}

// Paths returns every path directly beneath path.
func Paths(path string) ([]string, error) {
	return Current().Paths(path)
}

// ReadAll returns the content of a file.
func ReadAll(path string) (string, error) {
	return Current().ReadAll(path)
}

// Readlink returns the target of a symlink as stored.
func Readlink(path string) (string, error) {
	return Current().Readlink(path)
}

// ReadlinkAbs returns the absolute target of a symlink.
func ReadlinkAbs(path string) (string, error) {
	return Current().ReadlinkAbs(path)
}

// Remove removes a file, a symlink or an empty directory.
func Remove(path string) error {
	return Current().Remove(path)
}

// RemoveAll removes path and everything beneath it.
func RemoveAll(path string) error {
	return Current().RemoveAll(path)
}

// Root returns the root path of the active backend.
func Root() string {
	return Current().Root()
}

// SetCwd changes the working directory of the current backend.
func SetCwd(path string) (string, error) {
	return Current().SetCwd(path)
}

// Symlink creates link pointing at target.
func Symlink(link, target string) (string, error) {
	return Current().Symlink(link, target)
}

// Uid returns the user id owning path.
func Uid(path string) (int, error) {
	return Current().Uid(path)
}

// WriteAll writes data to path, creating or truncating it.
func WriteAll(path string, data []byte) error {
	return Current().WriteAll(path, data)
}
