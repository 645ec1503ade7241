package backend

import (
	"sync"

	"github.com/spf13/afero"

	"github.com/arthur-debert/vfs/pkg/vfs/memfs"
	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

// Memfs is the backend over an in-memory tree. It starts out holding only the root
// directory and keeps its own working directory, initially "/".
type Memfs struct {
	base
	mem *memfs.Fs

	mu  sync.RWMutex
	dir string
}

var _ VirtualFileSystem = (*Memfs)(nil)

// NewMemfs creates an empty in-memory backend.
func NewMemfs(opts ...memfs.Option) *Memfs {
	m := &Memfs{mem: memfs.New(opts...), dir: sys.Separator}
	m.base = base{
		kind:  KindMemfs,
		fs:    m.mem,
		cwd:   m.getwd,
		chdir: m.setwd,
	}
	return m
}

func (m *Memfs) getwd() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dir, nil
}

// setwd is called with an absolute path already checked to be a directory.
func (m *Memfs) setwd(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
	return nil
}

// Storage exposes the afero filesystem the backend runs on.
func (m *Memfs) Storage() afero.Fs {
	return m.mem
}

// String renders the whole tree for debugging.
func (m *Memfs) String() string {
	return m.mem.String()
}
