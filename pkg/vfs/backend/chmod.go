package backend

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Chmod changes permission bits on a path and, by default, everything beneath it. Symlinks
// are skipped unless Follow is set, in which case their targets are changed.
type Chmod struct {
	b    *base
	path string

	dirMode  *fs.FileMode
	fileMode *fs.FileMode
	sym      string
	recurse  bool
	follow   bool
}

// All sets the mode for directories and files alike.
func (c *Chmod) All(mode fs.FileMode) *Chmod {
	c.dirMode = &mode
	c.fileMode = &mode
	return c
}

// Dirs sets the mode given to directories. Files are left alone unless Files is also set.
func (c *Chmod) Dirs(mode fs.FileMode) *Chmod {
	c.dirMode = &mode
	return c
}

// Files sets the mode given to files. Directories are left alone unless Dirs is also set.
func (c *Chmod) Files(mode fs.FileMode) *Chmod {
	c.fileMode = &mode
	return c
}

// Sym applies a symbolic mode such as "u+x,go-w" or "a=rX" on top of the current bits.
// It is applied after any octal modes.
func (c *Chmod) Sym(expr string) *Chmod {
	c.sym = expr
	return c
}

// Readonly sets directories to 0555 and files to 0444.
func (c *Chmod) Readonly() *Chmod {
	return c.Dirs(0o555).Files(0o444)
}

// Secure sets directories to 0700 and files to 0600.
func (c *Chmod) Secure() *Chmod {
	return c.Dirs(0o700).Files(0o600)
}

// Recurse applies the change to everything beneath the path. This is the default.
func (c *Chmod) Recurse() *Chmod {
	c.recurse = true
	return c
}

// Shallow applies the change to the path only.
func (c *Chmod) Shallow() *Chmod {
	c.recurse = false
	return c
}

// Follow changes the targets of symlinks instead of skipping them.
func (c *Chmod) Follow() *Chmod {
	c.follow = true
	return c
}

// Exec applies the change. Directories are changed after their contents so a mode without
// search permission does not block the traversal.
func (c *Chmod) Exec() error {
	for _, m := range []*fs.FileMode{c.dirMode, c.fileMode} {
		if m == nil {
			continue
		}
		if err := validMode(*m); err != nil {
			return pathErr("chmod", c.path, err)
		}
	}
	clauses, err := parseSym(c.sym)
	if err != nil {
		return pathErr("chmod", c.path, err)
	}

	e := newEntries(c.b, c.path).ContentsFirst()
	if !c.recurse {
		e = e.MaxDepth(0)
	}
	if c.follow {
		e = e.Follow()
	}
	for entry, err := range e.All() {
		if err != nil {
			return err
		}
		if entry.IsSymlink() {
			continue
		}

		mode := entry.Mode() & settableBits
		switch {
		case entry.IsDir() && c.dirMode != nil:
			mode = *c.dirMode
		case !entry.IsDir() && c.fileMode != nil:
			mode = *c.fileMode
		}
		mode = applySym(clauses, mode, entry.IsDir())
		if mode == entry.Mode()&settableBits {
			continue
		}
		if err := c.b.fs.Chmod(entry.Path(), mode); err != nil {
			return wrap("chmod", entry.Path(), err)
		}
	}
	return nil
}

const settableBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// ParseMode parses an octal mode such as "0644" or "1777". The empty string is mode 0.
func ParseMode(s string) (fs.FileMode, error) {
	if s == "" {
		return 0, nil
	}
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil || m > 0o7777 {
		return 0, fmt.Errorf("%w %q", ErrInvalidMode, s)
	}
	mode := fs.FileMode(m & 0o777)
	if m&0o4000 != 0 {
		mode |= fs.ModeSetuid
	}
	if m&0o2000 != 0 {
		mode |= fs.ModeSetgid
	}
	if m&0o1000 != 0 {
		mode |= fs.ModeSticky
	}
	return mode, nil
}

// ValidSym reports whether expr is a valid symbolic mode such as "u+x" or "go-w,a+X".
func ValidSym(expr string) error {
	_, err := parseSym(expr)
	return err
}

type symClause struct {
	who fs.FileMode
	ops []symOp
}

type symOp struct {
	op    byte
	perms string
}

// parseSym parses comma separated clauses of the form [ugoa]*([-+=][rwxX]*)+.
func parseSym(expr string) ([]symClause, error) {
	if expr == "" {
		return nil, nil
	}

	var clauses []symClause
	for _, part := range strings.Split(expr, ",") {
		var cl symClause
		i := 0
		for ; i < len(part) && strings.IndexByte("ugoa", part[i]) >= 0; i++ {
			switch part[i] {
			case 'u':
				cl.who |= 0o700
			case 'g':
				cl.who |= 0o070
			case 'o':
				cl.who |= 0o007
			case 'a':
				cl.who |= 0o777
			}
		}
		if cl.who == 0 {
			cl.who = 0o777
		}
		if i == len(part) {
			return nil, fmt.Errorf("%w: %q has no operator", ErrInvalidMode, part)
		}
		for i < len(part) {
			op := part[i]
			if strings.IndexByte("+-=", op) < 0 {
				return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidMode, op, part)
			}
			i++
			start := i
			for ; i < len(part) && strings.IndexByte("rwxX", part[i]) >= 0; i++ {
			}
			cl.ops = append(cl.ops, symOp{op: op, perms: part[start:i]})
		}
		clauses = append(clauses, cl)
	}
	return clauses, nil
}

func applySym(clauses []symClause, mode fs.FileMode, isDir bool) fs.FileMode {
	for _, cl := range clauses {
		for _, op := range cl.ops {
			var bits fs.FileMode
			for _, p := range op.perms {
				switch p {
				case 'r':
					bits |= 0o444
				case 'w':
					bits |= 0o222
				case 'x':
					bits |= 0o111
				case 'X':
					if isDir || mode&0o111 != 0 {
						bits |= 0o111
					}
				}
			}
			bits &= cl.who
			switch op.op {
			case '+':
				mode |= bits
			case '-':
				mode &^= bits
			case '=':
				mode = mode&^cl.who | bits
			}
		}
	}
	return mode
}
