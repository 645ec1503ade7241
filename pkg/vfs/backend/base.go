package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

const (
	// DefaultDirMode is given to directories created by MkdirP.
	DefaultDirMode fs.FileMode = 0o755
	// DefaultFileMode is given to files created by Mkfile, Create and Append.
	DefaultFileMode fs.FileMode = 0o644
)

// base implements the whole capability set over a Storage. The backends differ only in the
// storage they hand it and in how the working directory is kept.
type base struct {
	kind  Kind
	fs    Storage
	cwd   func() (string, error)
	chdir func(string) error
}

func (b *base) Kind() Kind { return b.kind }

func (b *base) Root() string { return sys.Separator }

func (b *base) resolve(op, p string) (string, error) {
	cwd, err := b.cwd()
	if err != nil {
		return "", wrap(op, p, err)
	}
	abs, err := sys.Abs(p, cwd)
	if err != nil {
		return "", pathErr(op, p, err)
	}
	return abs, nil
}

func (b *base) lstat(p string) (fs.FileInfo, error) {
	fi, _, err := b.fs.LstatIfPossible(p)
	return fi, err
}

// checkParent verifies the parent of abs exists and is a directory.
func (b *base) checkParent(op, abs string) error {
	dir := sys.Dir(abs)
	fi, err := b.fs.Stat(dir)
	if err != nil {
		return wrap(op, dir, err)
	}
	if !fi.IsDir() {
		return pathErr(op, dir, ErrIsNotDir)
	}
	return nil
}

// mkdirAll creates abs and its missing parents, returning the directories it created in
// creation order.
func (b *base) mkdirAll(op, abs string) ([]string, error) {
	var created []string
	cur := sys.Separator
	for _, elem := range sys.Components(abs) {
		cur = sys.Mash(cur, elem)
		fi, err := b.fs.Stat(cur)
		if err == nil {
			if !fi.IsDir() {
				return created, pathErr(op, cur, ErrIsNotDir)
			}
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return created, wrap(op, cur, err)
		}
		if err := b.fs.Mkdir(cur, DefaultDirMode); err != nil {
			return created, wrap(op, cur, err)
		}
		created = append(created, cur)
	}
	return created, nil
}

// Abs implements VirtualFileSystem
func (b *base) Abs(p string) (string, error) {
	return b.resolve("abs", p)
}

// Cwd implements VirtualFileSystem
func (b *base) Cwd() (string, error) {
	dir, err := b.cwd()
	if err != nil {
		return "", wrap("cwd", "", err)
	}
	return dir, nil
}

// SetCwd implements VirtualFileSystem
func (b *base) SetCwd(p string) (string, error) {
	abs, err := b.resolve("setcwd", p)
	if err != nil {
		return "", err
	}
	fi, err := b.fs.Stat(abs)
	if err != nil {
		return "", wrap("setcwd", abs, err)
	}
	if !fi.IsDir() {
		return "", pathErr("setcwd", abs, ErrIsNotDir)
	}
	if err := b.chdir(abs); err != nil {
		return "", wrap("setcwd", abs, err)
	}
	return abs, nil
}

// Exists implements VirtualFileSystem. A dangling symlink exists.
func (b *base) Exists(p string) bool {
	abs, err := b.resolve("exists", p)
	if err != nil {
		return false
	}
	_, err = b.lstat(abs)
	return err == nil
}

func (b *base) is(p string, follow bool, check func(fs.FileMode) bool) bool {
	abs, err := b.resolve("stat", p)
	if err != nil {
		return false
	}
	var fi fs.FileInfo
	if follow {
		fi, err = b.fs.Stat(abs)
	} else {
		fi, err = b.lstat(abs)
	}
	return err == nil && check(fi.Mode())
}

// IsDir implements VirtualFileSystem. Symlinks are not directories.
func (b *base) IsDir(p string) bool {
	return b.is(p, false, fs.FileMode.IsDir)
}

// IsFile implements VirtualFileSystem. Symlinks are not files.
func (b *base) IsFile(p string) bool {
	return b.is(p, false, fs.FileMode.IsRegular)
}

// IsSymlink implements VirtualFileSystem
func (b *base) IsSymlink(p string) bool {
	return b.is(p, false, isLink)
}

// IsSymlinkDir implements VirtualFileSystem
func (b *base) IsSymlinkDir(p string) bool {
	return b.IsSymlink(p) && b.is(p, true, fs.FileMode.IsDir)
}

// IsSymlinkFile implements VirtualFileSystem
func (b *base) IsSymlinkFile(p string) bool {
	return b.IsSymlink(p) && b.is(p, true, fs.FileMode.IsRegular)
}

// IsExec implements VirtualFileSystem
func (b *base) IsExec(p string) bool {
	return b.is(p, true, func(m fs.FileMode) bool { return m&0o111 != 0 })
}

// IsReadonly implements VirtualFileSystem
func (b *base) IsReadonly(p string) bool {
	return b.is(p, true, func(m fs.FileMode) bool { return m&0o222 == 0 })
}

func isLink(m fs.FileMode) bool {
	return m&fs.ModeSymlink != 0
}

// Mode implements VirtualFileSystem
func (b *base) Mode(p string) (fs.FileMode, error) {
	abs, err := b.resolve("mode", p)
	if err != nil {
		return 0, err
	}
	fi, err := b.lstat(abs)
	if err != nil {
		return 0, wrap("mode", abs, err)
	}
	return fi.Mode(), nil
}

// Owner implements VirtualFileSystem
func (b *base) Owner(p string) (int, int, error) {
	abs, err := b.resolve("owner", p)
	if err != nil {
		return 0, 0, err
	}
	fi, err := b.lstat(abs)
	if err != nil {
		return 0, 0, wrap("owner", abs, err)
	}
	uid, gid, err := owner(fi)
	if err != nil {
		return 0, 0, pathErr("owner", abs, err)
	}
	return uid, gid, nil
}

// Uid implements VirtualFileSystem
func (b *base) Uid(p string) (int, error) {
	uid, _, err := b.Owner(p)
	return uid, err
}

// Gid implements VirtualFileSystem
func (b *base) Gid(p string) (int, error) {
	_, gid, err := b.Owner(p)
	return gid, err
}

// MkdirP implements VirtualFileSystem
func (b *base) MkdirP(p string) (string, error) {
	abs, err := b.resolve("mkdir", p)
	if err != nil {
		return "", err
	}
	if _, err := b.mkdirAll("mkdir", abs); err != nil {
		return "", err
	}
	return abs, nil
}

// MkdirM implements VirtualFileSystem. Directories that already existed keep their mode.
func (b *base) MkdirM(p string, mode fs.FileMode) (string, error) {
	abs, err := b.resolve("mkdir", p)
	if err != nil {
		return "", err
	}
	if err := validMode(mode); err != nil {
		return "", pathErr("mkdir", abs, err)
	}
	created, err := b.mkdirAll("mkdir", abs)
	if err != nil {
		return "", err
	}
	// Deepest first so a mode without write or search bits cannot lock out the next chmod.
	for i := len(created) - 1; i >= 0; i-- {
		if err := b.fs.Chmod(created[i], mode); err != nil {
			return "", wrap("mkdir", created[i], err)
		}
	}
	return abs, nil
}

// Mkfile implements VirtualFileSystem. An existing file only has its modification time
// updated.
func (b *base) Mkfile(p string) (string, error) {
	abs, err := b.resolve("mkfile", p)
	if err != nil {
		return "", err
	}
	if err := b.mkfile(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (b *base) mkfile(abs string) error {
	fi, err := b.fs.Stat(abs)
	if err == nil {
		if !fi.Mode().IsRegular() {
			return pathErr("mkfile", abs, ErrIsNotFile)
		}
		now := time.Now()
		return wrap("mkfile", abs, b.fs.Chtimes(abs, now, now))
	}
	if err := b.checkParent("mkfile", abs); err != nil {
		return err
	}
	f, err := b.fs.OpenFile(abs, os.O_WRONLY|os.O_CREATE, DefaultFileMode)
	if err != nil {
		return wrap("mkfile", abs, err)
	}
	return wrap("mkfile", abs, f.Close())
}

// MkfileM implements VirtualFileSystem
func (b *base) MkfileM(p string, mode fs.FileMode) (string, error) {
	abs, err := b.resolve("mkfile", p)
	if err != nil {
		return "", err
	}
	if err := validMode(mode); err != nil {
		return "", pathErr("mkfile", abs, err)
	}
	if err := b.mkfile(abs); err != nil {
		return "", err
	}
	if err := b.fs.Chmod(abs, mode); err != nil {
		return "", wrap("mkfile", abs, err)
	}
	return abs, nil
}

func (b *base) openWrite(op, p string, flag int) (afero.File, error) {
	abs, err := b.resolve(op, p)
	if err != nil {
		return nil, err
	}
	if err := b.checkParent(op, abs); err != nil {
		return nil, err
	}
	if fi, err := b.fs.Stat(abs); err == nil && !fi.Mode().IsRegular() {
		return nil, pathErr(op, abs, ErrIsNotFile)
	}
	f, err := b.fs.OpenFile(abs, flag, DefaultFileMode)
	if err != nil {
		return nil, wrap(op, abs, err)
	}
	return f, nil
}

// Create implements VirtualFileSystem
func (b *base) Create(p string) (io.WriteCloser, error) {
	return b.openWrite("create", p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// Append implements VirtualFileSystem
func (b *base) Append(p string) (io.WriteCloser, error) {
	return b.openWrite("append", p, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

// WriteAll implements VirtualFileSystem
func (b *base) WriteAll(p string, data []byte) error {
	f, err := b.openWrite("write", p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return wrap("write", f.Name(), err)
	}
	return wrap("write", f.Name(), f.Close())
}

// Open implements VirtualFileSystem
func (b *base) Open(p string) (io.ReadSeekCloser, error) {
	abs, err := b.resolve("open", p)
	if err != nil {
		return nil, err
	}
	fi, err := b.fs.Stat(abs)
	if err != nil {
		return nil, wrap("open", abs, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, pathErr("open", abs, ErrIsNotFile)
	}
	f, err := b.fs.Open(abs)
	if err != nil {
		return nil, wrap("open", abs, err)
	}
	return f, nil
}

// ReadAll implements VirtualFileSystem
func (b *base) ReadAll(p string) (string, error) {
	f, err := b.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", wrap("read", p, err)
	}
	return string(data), nil
}

// Remove implements VirtualFileSystem. Removing a missing path is not an error.
func (b *base) Remove(p string) error {
	abs, err := b.resolve("remove", p)
	if err != nil {
		return err
	}
	fi, err := b.lstat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return wrap("remove", abs, err)
	}
	if fi.IsDir() {
		names, err := afero.ReadDir(b.fs, abs)
		if err != nil {
			return wrap("remove", abs, err)
		}
		if len(names) > 0 {
			return pathErr("remove", abs, ErrDirNotEmpty)
		}
	}
	return wrap("remove", abs, b.fs.Remove(abs))
}

// RemoveAll implements VirtualFileSystem. Symlinks are removed, never followed.
func (b *base) RemoveAll(p string) error {
	abs, err := b.resolve("removeall", p)
	if err != nil {
		return err
	}
	if _, err := b.lstat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return wrap("removeall", abs, err)
	}
	return wrap("removeall", abs, b.fs.RemoveAll(abs))
}

// Symlink implements VirtualFileSystem. The target need not exist.
func (b *base) Symlink(link, target string) (string, error) {
	linkAbs, err := b.resolve("symlink", link)
	if err != nil {
		return "", err
	}
	targetAbs, err := b.resolve("symlink", target)
	if err != nil {
		return "", err
	}
	if err := b.checkParent("symlink", linkAbs); err != nil {
		return "", err
	}
	if _, err := b.lstat(linkAbs); err == nil {
		return "", pathErr("symlink", linkAbs, ErrExistsAlready)
	}
	rel := sys.Relative(targetAbs, sys.Dir(linkAbs))
	if err := b.fs.SymlinkIfPossible(rel, linkAbs); err != nil {
		return "", wrap("symlink", linkAbs, err)
	}
	return linkAbs, nil
}

// Readlink implements VirtualFileSystem
func (b *base) Readlink(p string) (string, error) {
	abs, err := b.resolve("readlink", p)
	if err != nil {
		return "", err
	}
	return b.readlink(abs)
}

func (b *base) readlink(abs string) (string, error) {
	fi, err := b.lstat(abs)
	if err != nil {
		return "", wrap("readlink", abs, err)
	}
	if !isLink(fi.Mode()) {
		return "", pathErr("readlink", abs, ErrIsNotSymlink)
	}
	target, err := b.fs.ReadlinkIfPossible(abs)
	if err != nil {
		return "", wrap("readlink", abs, err)
	}
	return target, nil
}

// ReadlinkAbs implements VirtualFileSystem
func (b *base) ReadlinkAbs(p string) (string, error) {
	abs, err := b.resolve("readlink", p)
	if err != nil {
		return "", err
	}
	target, err := b.readlink(abs)
	if err != nil {
		return "", err
	}
	resolved, err := linkTarget(abs, target)
	if err != nil {
		return "", pathErr("readlink", abs, err)
	}
	return resolved, nil
}

// linkTarget resolves a raw link target against the directory holding the link.
func linkTarget(link, target string) (string, error) {
	if sys.IsAbs(target) {
		return sys.Clean(target)
	}
	return sys.Clean(sys.Dir(link) + sys.Separator + target)
}

// maxLinkHops bounds symlink resolution in realpath, matching memfs.
const maxLinkHops = 40

// realpath resolves every symlink in the absolute clean path abs.
func (b *base) realpath(abs string) (string, error) {
	resolved := sys.Separator
	pending := sys.Components(abs)
	hops := 0
	for len(pending) > 0 {
		next := sys.Mash(resolved, pending[0])
		pending = pending[1:]

		fi, err := b.lstat(next)
		if err != nil {
			return "", err
		}
		if !isLink(fi.Mode()) {
			resolved = next
			continue
		}
		if hops++; hops > maxLinkHops {
			return "", ErrLinkLoop
		}
		raw, err := b.fs.ReadlinkIfPossible(next)
		if err != nil {
			return "", err
		}
		target, err := linkTarget(next, raw)
		if err != nil {
			return "", err
		}
		pending = append(sys.Components(target), pending...)
		resolved = sys.Separator
	}
	return resolved, nil
}

// Move implements VirtualFileSystem. Moving onto an existing directory moves src into it;
// an existing file at the destination is replaced.
func (b *base) Move(src, dst string) error {
	srcAbs, err := b.resolve("move", src)
	if err != nil {
		return err
	}
	dstAbs, err := b.resolve("move", dst)
	if err != nil {
		return err
	}
	fi, err := b.lstat(srcAbs)
	if err != nil {
		return wrap("move", srcAbs, err)
	}
	if di, err := b.fs.Stat(dstAbs); err == nil && di.IsDir() {
		dstAbs = sys.Mash(dstAbs, sys.Base(srcAbs))
	}
	if dstAbs == srcAbs {
		return nil
	}
	if fi.IsDir() && sys.HasPrefix(dstAbs, srcAbs) {
		return pathErr("move", dstAbs, ErrIntoSelf)
	}
	if _, err := b.mkdirAll("move", sys.Dir(dstAbs)); err != nil {
		return err
	}
	return wrap("move", srcAbs, b.fs.Rename(srcAbs, dstAbs))
}

// Copy implements VirtualFileSystem
func (b *base) Copy(src, dst string) error {
	c, err := b.CopyB(src, dst)
	if err != nil {
		return err
	}
	return c.Exec()
}

// CopyB implements VirtualFileSystem
func (b *base) CopyB(src, dst string) (*Copier, error) {
	srcAbs, err := b.resolve("copy", src)
	if err != nil {
		return nil, err
	}
	dstAbs, err := b.resolve("copy", dst)
	if err != nil {
		return nil, err
	}
	return &Copier{b: b, src: srcAbs, dst: dstAbs}, nil
}

// Chmod implements VirtualFileSystem. The mode is applied recursively without following
// symlinks.
func (b *base) Chmod(p string, mode fs.FileMode) error {
	c, err := b.ChmodB(p)
	if err != nil {
		return err
	}
	return c.All(mode).Exec()
}

// ChmodB implements VirtualFileSystem
func (b *base) ChmodB(p string) (*Chmod, error) {
	abs, err := b.resolve("chmod", p)
	if err != nil {
		return nil, err
	}
	return &Chmod{b: b, path: abs, recurse: true}, nil
}

// Chown implements VirtualFileSystem. Ownership is applied recursively; an id of -1 is left
// unchanged.
func (b *base) Chown(p string, uid, gid int) error {
	c, err := b.ChownB(p)
	if err != nil {
		return err
	}
	return c.Owner(uid, gid).Exec()
}

// ChownB implements VirtualFileSystem
func (b *base) ChownB(p string) (*Chown, error) {
	abs, err := b.resolve("chown", p)
	if err != nil {
		return nil, err
	}
	return &Chown{b: b, path: abs, uid: -1, gid: -1, recurse: true}, nil
}

// Entry implements VirtualFileSystem
func (b *base) Entry(p string) (Entry, error) {
	abs, err := b.resolve("entry", p)
	if err != nil {
		return Entry{}, err
	}
	fi, err := b.lstat(abs)
	if err != nil {
		return Entry{}, wrap("entry", abs, err)
	}
	return b.newEntry(abs, fi), nil
}

// Entries implements VirtualFileSystem
func (b *base) Entries(p string) (*Entries, error) {
	abs, err := b.resolve("entries", p)
	if err != nil {
		return nil, err
	}
	return newEntries(b, abs), nil
}

func (b *base) list(op, p string, recurse bool, filter func(*Entries) *Entries) ([]string, error) {
	abs, err := b.resolve(op, p)
	if err != nil {
		return nil, err
	}
	fi, err := b.fs.Stat(abs)
	if err != nil {
		return nil, wrap(op, abs, err)
	}
	if !fi.IsDir() {
		return nil, pathErr(op, abs, ErrIsNotDir)
	}
	e := newEntries(b, abs).MinDepth(1)
	if !recurse {
		e = e.MaxDepth(1)
	}
	if filter != nil {
		e = filter(e)
	}
	return e.Paths()
}

// AllDirs implements VirtualFileSystem
func (b *base) AllDirs(p string) ([]string, error) {
	return b.list("alldirs", p, true, (*Entries).Dirs)
}

// AllFiles implements VirtualFileSystem
func (b *base) AllFiles(p string) ([]string, error) {
	return b.list("allfiles", p, true, (*Entries).Files)
}

// AllPaths implements VirtualFileSystem
func (b *base) AllPaths(p string) ([]string, error) {
	return b.list("allpaths", p, true, nil)
}

// Dirs implements VirtualFileSystem
func (b *base) Dirs(p string) ([]string, error) {
	return b.list("dirs", p, false, (*Entries).Dirs)
}

// Files implements VirtualFileSystem
func (b *base) Files(p string) ([]string, error) {
	return b.list("files", p, false, (*Entries).Files)
}

// Paths implements VirtualFileSystem
func (b *base) Paths(p string) ([]string, error) {
	return b.list("paths", p, false, nil)
}

func validMode(mode fs.FileMode) error {
	if mode&^settableBits != 0 {
		return ErrInvalidMode
	}
	return nil
}
