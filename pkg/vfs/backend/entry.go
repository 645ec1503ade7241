package backend

import (
	"io/fs"
	"time"

	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

// Entry describes one filesystem object as seen at the time it was read.
//
// For a symlink, Alt holds the absolute target and Rel the target as stored. Follow returns
// the entry for the target: Path and Alt swap so Path names the target and Alt the link.
type Entry struct {
	path    string
	alt     string
	rel     string
	mode    fs.FileMode
	size    int64
	modTime time.Time
	follow  bool

	// target is the followed FileInfo of a symlink, nil when dangling.
	target fs.FileInfo
}

func (b *base) newEntry(abs string, fi fs.FileInfo) Entry {
	e := Entry{
		path:    abs,
		mode:    fi.Mode(),
		size:    fi.Size(),
		modTime: fi.ModTime(),
	}
	if !isLink(e.mode) {
		return e
	}
	if raw, err := b.fs.ReadlinkIfPossible(abs); err == nil {
		e.rel = raw
		if target, err := linkTarget(abs, raw); err == nil {
			e.alt = target
		}
	}
	if ti, err := b.fs.Stat(abs); err == nil {
		e.target = ti
	}
	return e
}

// Path is the absolute path of the entry.
func (e Entry) Path() string { return e.path }

// Alt is the absolute link target, or the link path once followed.
func (e Entry) Alt() string { return e.alt }

// Rel is the link target as stored in the link.
func (e Entry) Rel() string { return e.rel }

// Name is the final element of Path.
func (e Entry) Name() string { return sys.Base(e.path) }

func (e Entry) Mode() fs.FileMode   { return e.mode }
func (e Entry) Perm() fs.FileMode   { return e.mode.Perm() }
func (e Entry) Size() int64         { return e.size }
func (e Entry) ModTime() time.Time  { return e.modTime }
func (e Entry) IsDir() bool         { return e.mode.IsDir() }
func (e Entry) IsFile() bool        { return e.mode.IsRegular() }
func (e Entry) IsSymlink() bool     { return isLink(e.mode) }
func (e Entry) Following() bool     { return e.follow }
func (e Entry) IsSymlinkDir() bool  { return e.IsSymlink() && e.target != nil && e.target.IsDir() }
func (e Entry) IsSymlinkFile() bool { return e.IsSymlink() && e.target != nil && e.target.Mode().IsRegular() }
func (e Entry) IsExec() bool        { return e.mode&0o111 != 0 }
func (e Entry) IsReadonly() bool    { return e.mode&0o222 == 0 }
func (e Entry) IsDangling() bool    { return e.IsSymlink() && e.target == nil }
func (e Entry) String() string      { return e.path }

// Follow returns the entry of a symlink's target. Entries that are not symlinks and
// dangling symlinks are returned unchanged.
func (e Entry) Follow() Entry {
	if !e.IsSymlink() || e.target == nil {
		return e
	}
	return Entry{
		path:    e.alt,
		alt:     e.path,
		rel:     e.rel,
		mode:    e.target.Mode(),
		size:    e.target.Size(),
		modTime: e.target.ModTime(),
		follow:  true,
	}
}
