package backend

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

// Entries is a lazy traversal of a directory tree. Configure it with the builder methods,
// then range over All. Children are always visited in name order; the root is depth 0.
type Entries struct {
	b    *base
	root string

	minDepth      int
	maxDepth      int
	dirs          bool
	files         bool
	follow        bool
	dirsFirst     bool
	filesFirst    bool
	contentsFirst bool

	pattern     glob.Glob
	fullPattern bool
	patternErr  error
}

func newEntries(b *base, root string) *Entries {
	return &Entries{b: b, root: root, maxDepth: -1}
}

// MinDepth skips entries shallower than depth.
func (e *Entries) MinDepth(depth int) *Entries {
	e.minDepth = depth
	return e
}

// MaxDepth stops descending below depth. A negative depth means no limit.
func (e *Entries) MaxDepth(depth int) *Entries {
	e.maxDepth = depth
	return e
}

// Dirs yields only directories.
func (e *Entries) Dirs() *Entries {
	e.dirs = true
	e.files = false
	return e
}

// Files yields only files.
func (e *Entries) Files() *Entries {
	e.files = true
	e.dirs = false
	return e
}

// Follow follows symlinks, yielding the target in place of the link and descending into
// linked directories. A link back into the current branch is not descended twice.
func (e *Entries) Follow() *Entries {
	e.follow = true
	return e
}

// DirsFirst visits the directories of each level before its other entries.
func (e *Entries) DirsFirst() *Entries {
	e.dirsFirst = true
	e.filesFirst = false
	return e
}

// FilesFirst visits the non-directories of each level before its directories.
func (e *Entries) FilesFirst() *Entries {
	e.filesFirst = true
	e.dirsFirst = false
	return e
}

// ContentsFirst yields a directory's contents before the directory itself.
func (e *Entries) ContentsFirst() *Entries {
	e.contentsFirst = true
	return e
}

// Glob yields only entries whose name matches pattern. A pattern containing a separator is
// matched against the full path instead, with * not crossing separators and ** crossing them.
func (e *Entries) Glob(pattern string) *Entries {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		e.patternErr = pathErr("glob", pattern, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
		return e
	}
	e.pattern = g
	e.fullPattern = strings.Contains(pattern, sys.Separator)
	return e
}

// All yields every selected entry. Iteration stops at the first error, which is yielded
// with a zero Entry.
func (e *Entries) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if e.patternErr != nil {
			yield(Entry{}, e.patternErr)
			return
		}
		fi, err := e.b.lstat(e.root)
		if err != nil {
			yield(Entry{}, wrap("entries", e.root, err))
			return
		}
		e.walk(e.b.newEntry(e.root, fi), 0, nil, yield)
	}
}

// walk visits entry and, within the depth limit, its children. chain holds the resolved
// paths of the directories above entry. When following links, a directory resolving to a
// member of chain or to an ancestor of one is emitted but not descended.
func (e *Entries) walk(entry Entry, depth int, chain []string, yield func(Entry, error) bool) bool {
	if e.follow {
		entry = entry.Follow()
	}

	// A symlinked root is always traversed, its children keep the link's path.
	dir := entry.IsDir() || (depth == 0 && entry.IsSymlinkDir())
	descend := dir && (e.maxDepth < 0 || depth < e.maxDepth)
	if descend && e.follow {
		resolved, err := e.b.realpath(entry.Path())
		if err != nil {
			yield(Entry{}, wrap("entries", entry.Path(), err))
			return false
		}
		if looped(chain, resolved) {
			descend = false
		} else {
			chain = append(chain[:len(chain):len(chain)], resolved)
		}
	}

	if !e.contentsFirst && !e.emit(entry, depth, yield) {
		return false
	}
	if descend {
		children, err := e.children(entry.Path())
		if err != nil {
			yield(Entry{}, err)
			return false
		}
		for _, child := range children {
			if !e.walk(child, depth+1, chain, yield) {
				return false
			}
		}
	}
	if e.contentsFirst && !e.emit(entry, depth, yield) {
		return false
	}
	return true
}

// looped reports whether resolved is a member of chain or an ancestor of one.
func looped(chain []string, resolved string) bool {
	for _, dir := range chain {
		if sys.HasPrefix(dir, resolved) {
			return true
		}
	}
	return false
}

func (e *Entries) emit(entry Entry, depth int, yield func(Entry, error) bool) bool {
	if depth < e.minDepth {
		return true
	}
	if e.dirs && !entry.IsDir() {
		return true
	}
	if e.files && !entry.IsFile() {
		return true
	}
	if e.pattern != nil {
		subject := entry.Name()
		if e.fullPattern {
			subject = entry.Path()
		}
		if !e.pattern.Match(subject) {
			return true
		}
	}
	return yield(entry, nil)
}

func (e *Entries) children(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(e.b.fs, dir)
	if err != nil {
		return nil, wrap("entries", dir, err)
	}
	children := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		children = append(children, e.b.newEntry(sys.Mash(dir, fi.Name()), fi))
	}
	if e.dirsFirst || e.filesFirst {
		sort.SliceStable(children, func(i, j int) bool {
			di, dj := e.isDirLike(children[i]), e.isDirLike(children[j])
			if e.dirsFirst {
				return di && !dj
			}
			return !di && dj
		})
	}
	return children, nil
}

func (e *Entries) isDirLike(entry Entry) bool {
	return entry.IsDir() || (e.follow && entry.IsSymlinkDir())
}

// Collect gathers every selected entry.
func (e *Entries) Collect() ([]Entry, error) {
	var out []Entry
	for entry, err := range e.All() {
		if err != nil {
			return out, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// Paths gathers the path of every selected entry.
func (e *Entries) Paths() ([]string, error) {
	out := []string{}
	for entry, err := range e.All() {
		if err != nil {
			return out, err
		}
		out = append(out, entry.Path())
	}
	return out, nil
}
