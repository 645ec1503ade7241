package backend

import (
	"os"

	"github.com/spf13/afero"
)

// osStorage adds Lchown to afero's OS filesystem.
type osStorage struct {
	*afero.OsFs
}

// Lchown implements Storage
func (osStorage) Lchown(name string, uid, gid int) error {
	return os.Lchown(name, uid, gid)
}

// Stdfs is the backend over the operating system filesystem. Its working directory is the
// process working directory, shared with everything else in the process.
type Stdfs struct {
	base
}

var _ VirtualFileSystem = (*Stdfs)(nil)

// NewStdfs creates a backend over the operating system filesystem.
func NewStdfs() *Stdfs {
	s := &Stdfs{}
	s.base = base{
		kind:  KindStdfs,
		fs:    osStorage{&afero.OsFs{}},
		cwd:   os.Getwd,
		chdir: os.Chdir,
	}
	return s
}

// Storage exposes the afero filesystem the backend runs on.
func (s *Stdfs) Storage() afero.Fs {
	return s.fs
}
