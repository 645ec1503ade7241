package memfs

import (
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	sys     *Stat
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileInfo) Sys() any           { return fi.sys }

// File is an open handle on an Fs entry. Reads and writes go straight to the shared node so
// every handle observes the same content.
type File struct {
	fs      *Fs
	node    *node
	name    string
	flag    int
	offset  int64
	dirRead int
	closed  bool
}

var _ afero.File = (*File)(nil)

func (f *File) readable() bool { return f.flag&os.O_WRONLY == 0 }
func (f *File) writable() bool { return f.flag&(os.O_WRONLY|os.O_RDWR) != 0 }

func (f *File) pathErr(op string, err error) error {
	return &fs.PathError{Op: op, Path: f.name, Err: err}
}

// Name returns the name the file was opened with.
func (f *File) Name() string { return f.name }

// Close releases the handle.
func (f *File) Close() error {
	if f.closed {
		return f.pathErr("close", fs.ErrClosed)
	}
	f.closed = true
	return nil
}

func (f *File) Read(b []byte) (int, error) {
	n, err := f.ReadAt(b, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *File) ReadAt(b []byte, off int64) (int, error) {
	if f.closed {
		return 0, f.pathErr("read", fs.ErrClosed)
	}
	if !f.readable() {
		return 0, f.pathErr("read", syscall.EBADF)
	}
	if off < 0 {
		return 0, f.pathErr("read", syscall.EINVAL)
	}

	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()

	if f.node.isDir() {
		return 0, f.pathErr("read", syscall.EISDIR)
	}

	if off >= int64(len(f.node.data)) {
		return 0, io.EOF
	}
	n := copy(b, f.node.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, f.pathErr("seek", fs.ErrClosed)
	}

	f.fs.mu.RLock()
	size := int64(len(f.node.data))
	f.fs.mu.RUnlock()

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.offset + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return 0, f.pathErr("seek", syscall.EINVAL)
	}
	if abs < 0 {
		return 0, f.pathErr("seek", syscall.EINVAL)
	}
	f.offset = abs
	return abs, nil
}

func (f *File) Write(b []byte) (int, error) {
	if err := f.checkWrite(f.offset); err != nil {
		return 0, err
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	// Appends position at the end under the same lock as the write.
	if f.flag&os.O_APPEND != 0 {
		f.offset = int64(len(f.node.data))
	}
	n := f.writeAt(b, f.offset)
	f.offset += int64(n)
	return n, nil
}

func (f *File) WriteAt(b []byte, off int64) (int, error) {
	if err := f.checkWrite(off); err != nil {
		return 0, err
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	return f.writeAt(b, off), nil
}

func (f *File) checkWrite(off int64) error {
	switch {
	case f.closed:
		return f.pathErr("write", fs.ErrClosed)
	case !f.writable():
		return f.pathErr("write", syscall.EBADF)
	case off < 0:
		return f.pathErr("write", syscall.EINVAL)
	}
	return nil
}

// writeAt copies b into the node at off. The caller holds the write lock.
func (f *File) writeAt(b []byte, off int64) int {
	end := off + int64(len(b))
	if end > int64(len(f.node.data)) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	copy(f.node.data[off:], b)
	f.node.modTime = time.Now()
	return len(b)
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Readdir returns directory entries sorted by name. With count > 0 at most count entries
// are returned and io.EOF signals the end of the directory.
func (f *File) Readdir(count int) ([]fs.FileInfo, error) {
	if f.closed {
		return nil, f.pathErr("readdir", fs.ErrClosed)
	}
	f.fs.mu.RLock()
	if !f.node.isDir() {
		f.fs.mu.RUnlock()
		return nil, f.pathErr("readdir", syscall.ENOTDIR)
	}
	names := sortedNames(f.node)
	infos := make([]fs.FileInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, f.node.children[name].info())
	}
	f.fs.mu.RUnlock()

	if f.dirRead > len(infos) {
		f.dirRead = len(infos)
	}
	remaining := infos[f.dirRead:]
	if count <= 0 {
		f.dirRead = len(infos)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if count > len(remaining) {
		count = len(remaining)
	}
	f.dirRead += count
	return remaining[:count], nil
}

func (f *File) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, err
}

func (f *File) Stat() (fs.FileInfo, error) {
	if f.closed {
		return nil, f.pathErr("stat", fs.ErrClosed)
	}
	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()
	return f.node.info(), nil
}

// Sync is a no-op; content is always in memory.
func (f *File) Sync() error {
	if f.closed {
		return f.pathErr("sync", fs.ErrClosed)
	}
	return nil
}

func (f *File) Truncate(size int64) error {
	if f.closed {
		return f.pathErr("truncate", fs.ErrClosed)
	}
	if !f.writable() {
		return f.pathErr("truncate", syscall.EBADF)
	}
	if size < 0 {
		return f.pathErr("truncate", syscall.EINVAL)
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if size <= int64(len(f.node.data)) {
		f.node.data = f.node.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	f.node.modTime = time.Now()
	return nil
}
