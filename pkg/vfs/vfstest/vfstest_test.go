package vfstest_test

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/vfs/pkg/vfs"
	"github.com/arthur-debert/vfs/pkg/vfs/backend"
	"github.com/arthur-debert/vfs/pkg/vfs/sys"
	"github.com/arthur-debert/vfs/pkg/vfs/vfstest"
)

// recorder captures failures instead of stopping the test.
type recorder struct {
	testing.TB
	failed bool
	msgs   []string
}

func (r *recorder) Errorf(format string, args ...any) {
	r.failed = true
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func (r *recorder) FailNow() { r.failed = true }

func TestMemfsSetup(t *testing.T) {
	t.Cleanup(vfs.Reset)

	dir := vfstest.AssertMemfsSetup(t)
	require.Equal(t, backend.KindMemfs, vfs.Kind())
	require.Equal(t, sys.Mash(vfstest.TempRoot, t.Name()), dir)
	vfstest.AssertIsDir(t, dir)

	// A second setup starts from an empty directory.
	vfstest.AssertMkfile(t, sys.Mash(dir, "leftover"))
	dir = vfstest.AssertMemfsSetup(t)
	paths, err := vfs.Paths(dir)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestStdfsSetup(t *testing.T) {
	t.Cleanup(vfs.Reset)
	vfs.SetMemfs()

	dir := vfstest.AssertStdfsSetup(t)
	require.Equal(t, backend.KindStdfs, vfs.Kind())
	vfstest.AssertIsDir(t, dir)
}

func TestSetupCleanup(t *testing.T) {
	m := backend.NewMemfs()
	var dir string
	t.Run("inner", func(t *testing.T) {
		dir = vfstest.AssertSetupFs(t, m)
		vfstest.AssertWriteAllFs(t, m, sys.Mash(dir, "f"), "data")
	})
	vfstest.AssertNoExistsFs(t, m, dir)
	require.True(t, strings.HasPrefix(dir, vfstest.TempRoot+"/TestSetupCleanup/"))
}

func TestAssertions(t *testing.T) {
	for _, kind := range []backend.Kind{backend.KindMemfs, backend.KindStdfs} {
		t.Run(kind.String(), func(t *testing.T) {
			if kind == backend.KindStdfs && runtime.GOOS == "windows" {
				t.Skip("symlinks need privileges on windows")
			}
			t.Cleanup(vfs.Reset)

			var dir string
			if kind == backend.KindMemfs {
				dir = vfstest.AssertMemfsSetup(t)
			} else {
				dir = vfstest.AssertStdfsSetup(t)
			}

			sub := vfstest.AssertMkdirP(t, sys.Mash(dir, "a/b"))
			vfstest.AssertIsDir(t, sub)
			vfstest.AssertNoFile(t, sub)

			locked := vfstest.AssertMkdirM(t, sys.Mash(dir, "locked"), 0o700)
			vfstest.AssertIsDir(t, locked)

			file := vfstest.AssertMkfile(t, sys.Mash(sub, "empty"))
			vfstest.AssertReadAll(t, file, "")
			vfstest.AssertIsFile(t, file)
			vfstest.AssertNoDir(t, file)

			data := sys.Mash(dir, "data.txt")
			vfstest.AssertWriteAll(t, data, "hello")
			vfstest.AssertCopyfile(t, data, sys.Mash(dir, "copy.txt"))
			vfstest.AssertCopyfile(t, data, sub)
			vfstest.AssertReadAll(t, sys.Mash(sub, "data.txt"), "hello")

			link := vfstest.AssertSymlink(t, sys.Mash(sub, "link"), data)
			vfstest.AssertIsSymlink(t, link)
			vfstest.AssertNoSymlink(t, data)
			vfstest.AssertReadlink(t, link, "../../data.txt")
			vfstest.AssertReadlinkAbs(t, link, data)

			vfstest.AssertRemove(t, link)
			vfstest.AssertExists(t, data)
			vfstest.AssertRemoveAll(t, sys.Mash(dir, "a"))
			vfstest.AssertNoExists(t, sub)
		})
	}
}

func TestAssertionFailures(t *testing.T) {
	m := backend.NewMemfs()
	dir := vfstest.AssertSetupFs(t, m)
	missing := sys.Mash(dir, "missing")

	tests := []struct {
		name   string
		assert func(tb testing.TB)
	}{
		{"exists", func(tb testing.TB) { vfstest.AssertExistsFs(tb, m, missing) }},
		{"no exists", func(tb testing.TB) { vfstest.AssertNoExistsFs(tb, m, dir) }},
		{"is dir", func(tb testing.TB) { vfstest.AssertIsDirFs(tb, m, missing) }},
		{"is file", func(tb testing.TB) { vfstest.AssertIsFileFs(tb, m, dir) }},
		{"is symlink", func(tb testing.TB) { vfstest.AssertIsSymlinkFs(tb, m, dir) }},
		{"read all", func(tb testing.TB) { vfstest.AssertReadAllFs(tb, m, missing, "") }},
		{"readlink", func(tb testing.TB) { vfstest.AssertReadlinkFs(tb, m, dir, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{TB: t}
			tt.assert(r)
			if !r.failed {
				t.Errorf("assertion %q did not fail", tt.name)
			}
		})
	}
}

func TestAssertIterEq(t *testing.T) {
	vfstest.AssertIterEq(t, slices.Values([]string{"a", "b"}), slices.Values([]string{"a", "b"}))

	r := &recorder{TB: t}
	vfstest.AssertIterEq(r, slices.Values([]int{1, 2}), slices.Values([]int{2, 1}))
	require.True(t, r.failed)
}
