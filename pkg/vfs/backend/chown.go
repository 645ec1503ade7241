package backend

// Chown changes ownership of a path and, by default, everything beneath it. Symlinks are
// changed themselves unless Follow is set, in which case their targets are changed.
type Chown struct {
	b    *base
	path string

	uid     int
	gid     int
	recurse bool
	follow  bool
}

// Owner sets both ids. An id of -1 is left unchanged.
func (c *Chown) Owner(uid, gid int) *Chown {
	c.uid = uid
	c.gid = gid
	return c
}

// Uid sets the user id.
func (c *Chown) Uid(uid int) *Chown {
	c.uid = uid
	return c
}

// Gid sets the group id.
func (c *Chown) Gid(gid int) *Chown {
	c.gid = gid
	return c
}

// Recurse applies the change to everything beneath the path. This is the default.
func (c *Chown) Recurse() *Chown {
	c.recurse = true
	return c
}

// Shallow applies the change to the path only.
func (c *Chown) Shallow() *Chown {
	c.recurse = false
	return c
}

// Follow changes the targets of symlinks rather than the links.
func (c *Chown) Follow() *Chown {
	c.follow = true
	return c
}

// Exec applies the change.
func (c *Chown) Exec() error {
	if c.uid == -1 && c.gid == -1 {
		if _, err := c.b.lstat(c.path); err != nil {
			return wrap("chown", c.path, err)
		}
		return nil
	}

	e := newEntries(c.b, c.path)
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
			err = c.b.fs.Lchown(entry.Path(), c.uid, c.gid)
		} else {
			err = c.b.fs.Chown(entry.Path(), c.uid, c.gid)
		}
		if err != nil {
			return wrap("chown", entry.Path(), err)
		}
	}
	return nil
}
