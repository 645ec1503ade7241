package vfs

import (
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

// Registry holds the current backend. Readers take a snapshot of the handle with Current
// and keep using it after a later Set; only the handle is swapped, never the backend
// behind it.
type Registry struct {
	mu    sync.RWMutex
	fs    backend.VirtualFileSystem
	swaps atomic.Uint64
}

// NewRegistry creates a registry holding b.
func NewRegistry(b backend.VirtualFileSystem) *Registry {
	return &Registry{fs: b}
}

// Current returns the backend installed at the time of the call.
func (r *Registry) Current() backend.VirtualFileSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fs
}

// Set installs b unconditionally.
func (r *Registry) Set(b backend.VirtualFileSystem) {
	r.mu.Lock()
	prev := r.fs
	r.fs = b
	r.mu.Unlock()

	r.swaps.Add(1)
	log := Logger()
	log.Debug().
		Str("from", kindOf(prev).String()).
		Str("to", kindOf(b).String()).
		Msg("backend replaced")
}

// SetMemfs installs a fresh Memfs unless a Memfs is already installed. It reports whether
// a swap happened.
func (r *Registry) SetMemfs() bool {
	return r.setKind(backend.KindMemfs, func() backend.VirtualFileSystem { return backend.NewMemfs() })
}

// SetStdfs installs a Stdfs unless a Stdfs is already installed. It reports whether a swap
// happened.
func (r *Registry) SetStdfs() bool {
	return r.setKind(backend.KindStdfs, func() backend.VirtualFileSystem { return backend.NewStdfs() })
}

func (r *Registry) setKind(kind backend.Kind, create func() backend.VirtualFileSystem) bool {
	if r.Kind() == kind {
		return false
	}

	r.mu.Lock()
	if kindOf(r.fs) == kind {
		r.mu.Unlock()
		return false
	}
	prev := r.fs
	r.fs = create()
	r.mu.Unlock()

	r.swaps.Add(1)
	log := Logger()
	log.Debug().
		Str("from", kindOf(prev).String()).
		Str("to", kind.String()).
		Msg("backend replaced")
	return true
}

// Kind reports the kind of the installed backend.
func (r *Registry) Kind() backend.Kind {
	return kindOf(r.Current())
}

// Swaps counts the replacements made since the registry was created.
func (r *Registry) Swaps() uint64 {
	return r.swaps.Load()
}

func kindOf(b backend.VirtualFileSystem) backend.Kind {
	if b == nil {
		return backend.KindUnknown
	}
	return b.Kind()
}
