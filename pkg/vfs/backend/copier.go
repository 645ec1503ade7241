package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

// Copier copies a file, symlink or directory tree. Copying onto an existing directory
// copies the source into it; otherwise the destination becomes the copy, with missing
// parents created. Symlinks are copied as links unless Follow is set.
type Copier struct {
	b   *base
	src string
	dst string

	follow  bool
	mode    *fs.FileMode
	shallow bool
}

// Follow copies what symlinks point to instead of the links.
func (c *Copier) Follow() *Copier {
	c.follow = true
	return c
}

// Mode gives every copied file and directory mode instead of the source's.
func (c *Copier) Mode(mode fs.FileMode) *Copier {
	c.mode = &mode
	return c
}

// Shallow copies only the immediate contents of a source directory.
func (c *Copier) Shallow() *Copier {
	c.shallow = true
	return c
}

// Exec performs the copy.
func (c *Copier) Exec() error {
	if c.mode != nil {
		if err := validMode(*c.mode); err != nil {
			return pathErr("copy", c.src, err)
		}
	}
	fi, err := c.b.lstat(c.src)
	if err != nil {
		return wrap("copy", c.src, err)
	}
	src := c.b.newEntry(c.src, fi)
	if c.follow {
		src = src.Follow()
	}

	dst := c.dst
	if di, err := c.b.fs.Stat(dst); err == nil && di.IsDir() {
		dst = sys.Mash(dst, sys.Base(c.src))
	}
	if dst == src.Path() {
		return pathErr("copy", dst, ErrExistsAlready)
	}
	if src.IsDir() {
		if err := c.checkIntoSelf(src, dst); err != nil {
			return err
		}
	}
	if _, err := c.b.mkdirAll("copy", sys.Dir(dst)); err != nil {
		return err
	}
	return c.copy(src, dst, 0, nil)
}

// checkIntoSelf rejects a destination that lies under the source, directly or once the
// links along either path are resolved.
func (c *Copier) checkIntoSelf(src Entry, dst string) error {
	if sys.HasPrefix(dst, src.Path()) {
		return pathErr("copy", dst, ErrIntoSelf)
	}
	realSrc, err := c.b.realpath(src.Path())
	if err != nil {
		return wrap("copy", src.Path(), err)
	}

	// Resolve the deepest existing ancestor of dst, the rest is created plain.
	dir, rest := sys.Dir(dst), sys.Base(dst)
	for {
		realDir, err := c.b.realpath(dir)
		if err == nil {
			if sys.HasPrefix(sys.Mash(realDir, rest), realSrc) {
				return pathErr("copy", dst, ErrIntoSelf)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) || dir == sys.Separator {
			return nil
		}
		dir, rest = sys.Dir(dir), sys.Base(dir)+sys.Separator+rest
	}
}

func (c *Copier) perm(src Entry) fs.FileMode {
	if c.mode != nil {
		return *c.mode
	}
	return src.Mode() & settableBits
}

// copy copies src to dst. chain holds the resolved paths of the source directories
// above src when following links.
func (c *Copier) copy(src Entry, dst string, depth int, chain []string) error {
	switch {
	case src.IsSymlink():
		return c.copyLink(src, dst)
	case src.IsDir():
		return c.copyDir(src, dst, depth, chain)
	default:
		return c.copyFile(src, dst)
	}
}

func (c *Copier) copyLink(src Entry, dst string) error {
	if fi, err := c.b.lstat(dst); err == nil {
		if fi.IsDir() {
			return pathErr("copy", dst, ErrIsNotSymlink)
		}
		if err := c.b.fs.Remove(dst); err != nil {
			return wrap("copy", dst, err)
		}
	}
	return wrap("copy", dst, c.b.fs.SymlinkIfPossible(src.Rel(), dst))
}

func (c *Copier) copyDir(src Entry, dst string, depth int, chain []string) error {
	if c.follow {
		resolved, err := c.b.realpath(src.Path())
		if err != nil {
			return wrap("copy", src.Path(), err)
		}
		if looped(chain, resolved) {
			at := src.Path()
			if src.Following() {
				at = src.Alt()
			}
			return pathErr("copy", at, ErrLinkLoop)
		}
		chain = append(chain[:len(chain):len(chain)], resolved)
	}

	fi, err := c.b.lstat(dst)
	switch {
	case err == nil && !fi.IsDir():
		return pathErr("copy", dst, ErrIsNotDir)
	case err != nil:
		if err := c.b.fs.Mkdir(dst, DefaultDirMode); err != nil {
			return wrap("copy", dst, err)
		}
	}

	if !c.shallow || depth == 0 {
		children, err := newEntries(c.b, src.Path()).children(src.Path())
		if err != nil {
			return err
		}
		for _, child := range children {
			name := child.Name()
			if c.follow {
				child = child.Follow()
			}
			if child.IsDir() && c.shallow {
				continue
			}
			if err := c.copy(child, sys.Mash(dst, name), depth+1, chain); err != nil {
				return err
			}
		}
	}

	// Mode last so a read-only source directory can still be filled.
	return wrap("copy", dst, c.b.fs.Chmod(dst, c.perm(src)))
}

func (c *Copier) copyFile(src Entry, dst string) error {
	if !src.IsFile() {
		return pathErr("copy", src.Path(), ErrIsNotFile)
	}
	if fi, err := c.b.fs.Stat(dst); err == nil && !fi.Mode().IsRegular() {
		return pathErr("copy", dst, ErrIsNotFile)
	}

	in, err := c.b.fs.Open(src.Path())
	if err != nil {
		return wrap("copy", src.Path(), err)
	}
	defer in.Close()

	out, err := c.b.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return wrap("copy", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return wrap("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return wrap("copy", dst, err)
	}
	return wrap("copy", dst, c.b.fs.Chmod(dst, c.perm(src)))
}
