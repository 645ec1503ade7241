package vfs

import (
	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

// std is the process-wide registry behind the package level functions. It starts out with
// the operating system filesystem.
var std = NewRegistry(backend.NewStdfs())

// Default returns the process-wide registry.
func Default() *Registry {
	return std
}

// Current returns the backend the package level functions currently forward to.
func Current() backend.VirtualFileSystem {
	return std.Current()
}

// Set installs b as the process-wide backend.
func Set(b backend.VirtualFileSystem) {
	std.Set(b)
}

// SetMemfs switches the process-wide backend to a fresh Memfs unless it already is one.
func SetMemfs() bool {
	return std.SetMemfs()
}

// SetStdfs switches the process-wide backend to Stdfs unless it already is one.
func SetStdfs() bool {
	return std.SetStdfs()
}

// Reset installs a fresh Stdfs, discarding whatever backend was installed.
func Reset() {
	std.Set(backend.NewStdfs())
}

// Kind reports the kind of the process-wide backend.
func Kind() backend.Kind {
	return std.Kind()
}
