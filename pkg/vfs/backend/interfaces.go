// Package backend defines the virtual filesystem capability set and its two
// implementations: Stdfs over the operating system and Memfs over an in-memory tree.
//
// Both implementations share a single capability layer written against the afero storage
// interfaces, so for equivalent starting state they behave identically. Every path argument
// is expanded ("~", "$VAR") and made absolute against the backend's working directory
// before use; no I/O is needed for that step.
package backend

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

// Kind identifies a backend implementation.
type Kind int

const (
	// KindUnknown is reported by backends other than the built-in ones.
	KindUnknown Kind = iota
	// KindStdfs is the operating system filesystem.
	KindStdfs
	// KindMemfs is the in-memory filesystem.
	KindMemfs
)

func (k Kind) String() string {
	switch k {
	case KindStdfs:
		return "stdfs"
	case KindMemfs:
		return "memfs"
	default:
		return "unknown"
	}
}

// ParseKind parses "stdfs" or "memfs", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stdfs", "std", "os":
		return KindStdfs, nil
	case "memfs", "mem", "memory":
		return KindMemfs, nil
	default:
		return KindUnknown, fmt.Errorf("unknown backend kind %q", s)
	}
}

// New returns a fresh backend of the given kind.
func New(kind Kind) (VirtualFileSystem, error) {
	switch kind {
	case KindStdfs:
		return NewStdfs(), nil
	case KindMemfs:
		return NewMemfs(), nil
	default:
		return nil, fmt.Errorf("cannot construct backend of kind %s", kind)
	}
}

// Storage is the primitive layer a backend is built on.
type Storage interface {
	afero.Fs
	afero.Lstater
	afero.Linker
	afero.LinkReader

	// Lchown changes ownership without following a final symlink.
	Lchown(name string, uid, gid int) error
}

// VirtualFileSystem is the capability set every backend provides.
type VirtualFileSystem interface {
	// Kind reports which implementation this is.
	Kind() Kind

	// Abs returns the path in absolute clean form, expanding "~" and environment
	// references and resolving "." and ".." without touching the filesystem.
	Abs(path string) (string, error)

	// AllDirs returns every directory beneath path, recursively, sorted by name.
	AllDirs(path string) ([]string, error)
	// AllFiles returns every file beneath path, recursively, sorted by name.
	AllFiles(path string) ([]string, error)
	// AllPaths returns every path beneath path, recursively, sorted by name.
	AllPaths(path string) ([]string, error)

	// Append opens path for appending, creating it if needed.
	Append(path string) (io.WriteCloser, error)
	// Create opens path for writing, creating or truncating it.
	Create(path string) (io.WriteCloser, error)
	// Open opens a file for reading.
	Open(path string) (io.ReadSeekCloser, error)
	// ReadAll returns the content of a file as a string.
	ReadAll(path string) (string, error)
	// WriteAll writes data to path, creating or truncating it.
	WriteAll(path string, data []byte) error

	// Chmod sets the permission bits of path and everything beneath it.
	Chmod(path string, mode fs.FileMode) error
	// ChmodB returns a builder for advanced chmod options.
	ChmodB(path string) (*Chmod, error)
	// Chown sets the ownership of path and everything beneath it.
	Chown(path string, uid, gid int) error
	// ChownB returns a builder for advanced chown options.
	ChownB(path string) (*Chown, error)

	// Copy copies src to dst recursively.
	Copy(src, dst string) error
	// CopyB returns a builder for advanced copy options.
	CopyB(src, dst string) (*Copier, error)
	// Move moves src to dst.
	Move(src, dst string) error

	// Cwd returns the working directory.
	Cwd() (string, error)
	// SetCwd changes the working directory and returns its absolute form.
	SetCwd(path string) (string, error)
	// Root returns the root directory.
	Root() string

	// Dirs returns the directories directly beneath path, sorted by name.
	Dirs(path string) ([]string, error)
	// Files returns the files directly beneath path, sorted by name.
	Files(path string) ([]string, error)
	// Paths returns every path directly beneath path, sorted by name.
	Paths(path string) ([]string, error)
	// Entries returns a traversal builder rooted at path.
	Entries(path string) (*Entries, error)
	// Entry returns the entry for path without following a final symlink.
	Entry(path string) (Entry, error)

	Exists(path string) bool
	IsDir(path string) bool
	IsFile(path string) bool
	IsExec(path string) bool
	IsReadonly(path string) bool
	IsSymlink(path string) bool
	IsSymlinkDir(path string) bool
	IsSymlinkFile(path string) bool

	// MkdirM creates path and any missing parents, giving every created directory mode.
	MkdirM(path string, mode fs.FileMode) (string, error)
	// MkdirP creates path and any missing parents.
	MkdirP(path string) (string, error)
	// Mkfile creates an empty file if it does not already exist.
	Mkfile(path string) (string, error)
	// MkfileM is Mkfile followed by setting mode.
	MkfileM(path string, mode fs.FileMode) (string, error)

	// Mode returns the type and permission bits of path itself.
	Mode(path string) (fs.FileMode, error)
	// Owner returns the user and group IDs owning path.
	Owner(path string) (uid, gid int, err error)
	Uid(path string) (int, error)
	Gid(path string) (int, error)

	// Readlink returns the target of a symlink as stored, usually relative.
	Readlink(path string) (string, error)
	// ReadlinkAbs returns the absolute target of a symlink.
	ReadlinkAbs(path string) (string, error)
	// Symlink creates link pointing at target, stored relative to the link's directory.
	Symlink(link, target string) (string, error)

	// Remove removes a file, a symlink or an empty directory.
	Remove(path string) error
	// RemoveAll removes path and everything beneath it.
	RemoveAll(path string) error
}
