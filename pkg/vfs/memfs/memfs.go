// Package memfs implements an in-memory afero.Fs with symlinks, permission bits and owners.
//
// Unlike afero.MemMapFs it models a real directory tree: creating an entry requires an
// existing parent directory, removing a non-empty directory fails and symlinks are resolved
// component by component with a loop limit. Permission bits are recorded but not enforced.
package memfs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// maxLinkHops bounds symlink resolution, matching the Linux MAXSYMLINKS limit.
const maxLinkHops = 40

const (
	// DefaultDirMode is used for the root directory.
	DefaultDirMode fs.FileMode = 0o755
	linkMode       fs.FileMode = fs.ModeSymlink | 0o777
)

// Stat is returned by FileInfo.Sys for entries of an Fs.
type Stat struct {
	Uid int
	Gid int
}

type node struct {
	name     string
	mode     fs.FileMode
	modTime  time.Time
	uid      int
	gid      int
	data     []byte
	target   string
	children map[string]*node
}

func (n *node) isDir() bool  { return n.mode.IsDir() }
func (n *node) isLink() bool { return n.mode&fs.ModeSymlink != 0 }

func (n *node) info() fs.FileInfo {
	return &fileInfo{
		name:    n.name,
		size:    int64(len(n.data)),
		mode:    n.mode,
		modTime: n.modTime,
		sys:     &Stat{Uid: n.uid, Gid: n.gid},
	}
}

// Fs is an in-memory filesystem. It is safe for concurrent use.
type Fs struct {
	mu   sync.RWMutex
	root *node
	uid  int
	gid  int
}

// Option configures an Fs.
type Option func(*Fs)

// WithOwner sets the owner assigned to new entries.
func WithOwner(uid, gid int) Option {
	return func(m *Fs) {
		m.uid = uid
		m.gid = gid
	}
}

// New creates an empty filesystem holding only the root directory. New entries are owned
// by the current process's user and group unless WithOwner says otherwise.
func New(opts ...Option) *Fs {
	m := &Fs{uid: os.Getuid(), gid: os.Getgid()}
	for _, opt := range opts {
		opt(m)
	}
	m.root = m.newNode("/", fs.ModeDir|DefaultDirMode)
	return m
}

var (
	_ afero.Fs         = (*Fs)(nil)
	_ afero.Lstater    = (*Fs)(nil)
	_ afero.Linker     = (*Fs)(nil)
	_ afero.LinkReader = (*Fs)(nil)
)

func (m *Fs) newNode(name string, mode fs.FileMode) *node {
	n := &node{
		name:    name,
		mode:    mode,
		modTime: time.Now(),
		uid:     m.uid,
		gid:     m.gid,
	}
	if mode.IsDir() {
		n.children = make(map[string]*node)
	}
	return n
}

func normalize(name string) string {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return path.Clean(name)
}

func split(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// walk resolves p to a node. Symlinks in intermediate components are always followed; the
// final component is followed only when follow is set. The returned path is the resolved
// location of the node.
func (m *Fs) walk(p string, follow bool, hops int) (*node, string, error) {
	parts := split(p)
	cur, curPath := m.root, "/"
	for i, part := range parts {
		if !cur.isDir() {
			return nil, "", syscall.ENOTDIR
		}
		child, ok := cur.children[part]
		if !ok {
			return nil, "", fs.ErrNotExist
		}
		last := i == len(parts)-1
		if child.isLink() && (!last || follow) {
			hops++
			if hops > maxLinkHops {
				return nil, "", syscall.ELOOP
			}
			target := child.target
			if !path.IsAbs(target) {
				target = path.Join(curPath, target)
			}
			rest := append([]string{target}, parts[i+1:]...)
			return m.walk(path.Join(rest...), follow, hops)
		}
		cur, curPath = child, path.Join(curPath, part)
	}
	return cur, curPath, nil
}

func (m *Fs) lookup(op, name string, follow bool) (*node, string, error) {
	n, resolved, err := m.walk(normalize(name), follow, 0)
	if err != nil {
		return nil, "", &fs.PathError{Op: op, Path: name, Err: err}
	}
	return n, resolved, nil
}

// parent resolves the directory that holds name and returns it with the base name.
func (m *Fs) parent(op, name string) (*node, string, error) {
	p := normalize(name)
	if p == "/" {
		return nil, "", &fs.PathError{Op: op, Path: name, Err: fs.ErrExist}
	}
	dir, _, err := m.walk(path.Dir(p), true, 0)
	if err != nil {
		return nil, "", &fs.PathError{Op: op, Path: name, Err: err}
	}
	if !dir.isDir() {
		return nil, "", &fs.PathError{Op: op, Path: name, Err: syscall.ENOTDIR}
	}
	return dir, path.Base(p), nil
}

// Name implements afero.Fs.
func (m *Fs) Name() string { return "memfs" }

// Create implements afero.Fs.
func (m *Fs) Create(name string) (afero.File, error) {
	return m.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// Mkdir implements afero.Fs. The parent directory must exist.
func (m *Fs) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdir(name, perm)
}

func (m *Fs) mkdir(name string, perm fs.FileMode) error {
	dir, base, err := m.parent("mkdir", name)
	if err != nil {
		return err
	}
	if _, exists := dir.children[base]; exists {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	dir.children[base] = m.newNode(base, fs.ModeDir|perm.Perm())
	dir.modTime = time.Now()
	return nil
}

// MkdirAll implements afero.Fs.
func (m *Fs) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := "/"
	for _, part := range split(normalize(p)) {
		cur = path.Join(cur, part)
		n, _, err := m.walk(cur, true, 0)
		if err == nil {
			if !n.isDir() {
				return &fs.PathError{Op: "mkdir", Path: cur, Err: syscall.ENOTDIR}
			}
			continue
		}
		if err := m.mkdir(cur, perm); err != nil {
			return err
		}
	}
	return nil
}

// Open implements afero.Fs.
func (m *Fs) Open(name string) (afero.File, error) {
	return m.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile implements afero.Fs.
func (m *Fs) OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.walk(normalize(name), true, 0)
	switch {
	case err == nil:
		if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
		}
		if n.isDir() && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
		}
		if flag&os.O_TRUNC != 0 && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			n.data = nil
			n.modTime = time.Now()
		}
	case err == fs.ErrNotExist && flag&os.O_CREATE != 0:
		n, err = m.create(normalize(name), perm, 0)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	return &File{fs: m, node: n, name: name, flag: flag}, nil
}

// create makes a new regular file at p, following a dangling symlink in the final
// component to its target like open(2) does.
func (m *Fs) create(p string, perm fs.FileMode, hops int) (*node, error) {
	dir, base, err := m.parent("open", p)
	if err != nil {
		return nil, err
	}
	if existing, ok := dir.children[base]; ok {
		if !existing.isLink() {
			return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrExist}
		}
		if hops >= maxLinkHops {
			return nil, &fs.PathError{Op: "open", Path: p, Err: syscall.ELOOP}
		}
		target := existing.target
		if !path.IsAbs(target) {
			target = path.Join(path.Dir(p), target)
		}
		return m.create(target, perm, hops+1)
	}
	n := m.newNode(base, perm.Perm())
	dir.children[base] = n
	dir.modTime = time.Now()
	return n, nil
}

// Remove implements afero.Fs. Directories must be empty.
func (m *Fs) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.lookup("remove", name, false)
	if err != nil {
		return err
	}
	if n == m.root {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.EBUSY}
	}
	if n.isDir() && len(n.children) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
	}
	dir, base, err := m.parent("remove", name)
	if err != nil {
		return err
	}
	delete(dir.children, base)
	dir.modTime = time.Now()
	return nil
}

// RemoveAll implements afero.Fs. A missing path is not an error and symlinks are removed
// rather than followed.
func (m *Fs) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.walk(normalize(p), false, 0)
	if err != nil {
		if err == fs.ErrNotExist {
			return nil
		}
		return &fs.PathError{Op: "removeall", Path: p, Err: err}
	}
	if n == m.root {
		n.children = make(map[string]*node)
		return nil
	}
	dir, base, err := m.parent("removeall", p)
	if err != nil {
		return err
	}
	delete(dir.children, base)
	dir.modTime = time.Now()
	return nil
}

// Rename implements afero.Fs with rename(2) semantics.
func (m *Fs) Rename(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	linkErr := func(err error) error {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}

	src, _, err := m.walk(normalize(oldname), false, 0)
	if err != nil {
		return linkErr(err)
	}
	if src == m.root {
		return linkErr(syscall.EBUSY)
	}
	srcDir, srcBase, err := m.parent("rename", oldname)
	if err != nil {
		return err
	}
	dstDir, dstBase, err := m.parent("rename", newname)
	if err != nil {
		return err
	}

	oldPath, newPath := normalize(oldname), normalize(newname)
	if oldPath == newPath {
		return nil
	}
	if src.isDir() && strings.HasPrefix(newPath, oldPath+"/") {
		return linkErr(syscall.EINVAL)
	}

	if dst, exists := dstDir.children[dstBase]; exists {
		switch {
		case dst.isDir() && !src.isDir():
			return linkErr(syscall.EISDIR)
		case !dst.isDir() && src.isDir():
			return linkErr(syscall.ENOTDIR)
		case dst.isDir() && len(dst.children) > 0:
			return linkErr(syscall.ENOTEMPTY)
		}
	}

	delete(srcDir.children, srcBase)
	src.name = dstBase
	dstDir.children[dstBase] = src
	now := time.Now()
	srcDir.modTime, dstDir.modTime = now, now
	return nil
}

// Stat implements afero.Fs, following symlinks.
func (m *Fs) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, _, err := m.lookup("stat", name, true)
	if err != nil {
		return nil, err
	}
	return n.info(), nil
}

// LstatIfPossible implements afero.Lstater.
func (m *Fs) LstatIfPossible(name string) (fs.FileInfo, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, _, err := m.lookup("lstat", name, false)
	if err != nil {
		return nil, true, err
	}
	return n.info(), true, nil
}

// Chmod implements afero.Fs, following symlinks.
func (m *Fs) Chmod(name string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.lookup("chmod", name, true)
	if err != nil {
		return err
	}
	const settable = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky
	n.mode = n.mode&^settable | mode&settable
	return nil
}

// Chown implements afero.Fs, following symlinks. A uid or gid of -1 leaves it unchanged.
func (m *Fs) Chown(name string, uid, gid int) error {
	return m.chown("chown", name, uid, gid, true)
}

// Lchown changes the owner of name without following a final symlink.
func (m *Fs) Lchown(name string, uid, gid int) error {
	return m.chown("lchown", name, uid, gid, false)
}

func (m *Fs) chown(op, name string, uid, gid int, follow bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.lookup(op, name, follow)
	if err != nil {
		return err
	}
	if uid != -1 {
		n.uid = uid
	}
	if gid != -1 {
		n.gid = gid
	}
	return nil
}

// Chtimes implements afero.Fs. Access times are not tracked.
func (m *Fs) Chtimes(name string, _ time.Time, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.lookup("chtimes", name, true)
	if err != nil {
		return err
	}
	n.modTime = mtime
	return nil
}

// SymlinkIfPossible implements afero.Linker. The target is stored verbatim and need not
// exist.
func (m *Fs) SymlinkIfPossible(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir, base, err := m.parent("symlink", newname)
	if err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: unwrapPathErr(err)}
	}
	if _, exists := dir.children[base]; exists {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: fs.ErrExist}
	}
	n := m.newNode(base, linkMode)
	n.target = oldname
	dir.children[base] = n
	dir.modTime = time.Now()
	return nil
}

// ReadlinkIfPossible implements afero.LinkReader.
func (m *Fs) ReadlinkIfPossible(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, _, err := m.lookup("readlink", name, false)
	if err != nil {
		return "", err
	}
	if !n.isLink() {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
	}
	return n.target, nil
}

// String renders the whole tree, one entry per line, for debugging.
func (m *Fs) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	var dump func(n *node, p string)
	dump = func(n *node, p string) {
		fmt.Fprintf(&b, "%s %s %d:%d", n.mode, p, n.uid, n.gid)
		switch {
		case n.isLink():
			fmt.Fprintf(&b, " -> %s", n.target)
		case !n.isDir():
			fmt.Fprintf(&b, " (%d bytes)", len(n.data))
		}
		b.WriteByte('\n')
		for _, name := range sortedNames(n) {
			dump(n.children[name], path.Join(p, name))
		}
	}
	dump(m.root, "/")
	return b.String()
}

func sortedNames(n *node) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unwrapPathErr(err error) error {
	if pe, ok := err.(*fs.PathError); ok {
		return pe.Err
	}
	return err
}
