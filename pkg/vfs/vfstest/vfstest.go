// Package vfstest provides assertions for tests that work against the process-wide
// filesystem or an explicit backend. Every AssertX works on the current backend and has an
// AssertXFs variant taking the backend to use.
package vfstest

import (
	"io/fs"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/vfs/pkg/vfs"
	"github.com/arthur-debert/vfs/pkg/vfs/backend"
	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

// TempRoot is the directory Memfs test directories are created under.
const TempRoot = "/tests/temp"

// AssertSetup creates an empty directory for the running test on the current backend and
// returns its absolute path. The directory is removed when the test finishes.
func AssertSetup(t testing.TB) string {
	t.Helper()
	return AssertSetupFs(t, vfs.Current())
}

// AssertMemfsSetup switches the process-wide backend to Memfs, then behaves like AssertSetup.
func AssertMemfsSetup(t testing.TB) string {
	t.Helper()
	vfs.SetMemfs()
	require.Equal(t, backend.KindMemfs, vfs.Kind())
	return AssertSetup(t)
}

// AssertStdfsSetup switches the process-wide backend to Stdfs, then behaves like AssertSetup.
func AssertStdfsSetup(t testing.TB) string {
	t.Helper()
	vfs.SetStdfs()
	require.Equal(t, backend.KindStdfs, vfs.Kind())
	return AssertSetup(t)
}

// AssertSetupFs creates the test directory on b. Memfs uses TempRoot/<test name>, Stdfs a
// directory from t.TempDir.
func AssertSetupFs(t testing.TB, b backend.VirtualFileSystem) string {
	t.Helper()

	var dir string
	if b.Kind() == backend.KindMemfs {
		dir = sys.Mash(TempRoot, t.Name())
	} else {
		dir = t.TempDir()
	}
	require.NoError(t, b.RemoveAll(dir))
	dir, err := b.MkdirP(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = b.RemoveAll(dir)
	})
	return dir
}

func AssertCopyfile(t testing.TB, from, to string) {
	t.Helper()
	AssertCopyfileFs(t, vfs.Current(), from, to)
}

// AssertCopyfileFs copies the file from to to and checks both hold the same data.
func AssertCopyfileFs(t testing.TB, b backend.VirtualFileSystem, from, to string) {
	t.Helper()
	require.True(t, b.IsFile(from), "source %s is not a file", from)
	require.NoError(t, b.Copy(from, to))

	dst := to
	if b.IsDir(to) {
		dst = sys.Mash(to, sys.Base(from))
	}
	require.True(t, b.IsFile(dst), "copy %s is not a file", dst)

	want, err := b.ReadAll(from)
	require.NoError(t, err)
	got, err := b.ReadAll(dst)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func AssertExists(t testing.TB, path string) {
	t.Helper()
	AssertExistsFs(t, vfs.Current(), path)
}

func AssertExistsFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.True(t, b.Exists(path), "%s does not exist", path)
}

func AssertNoExists(t testing.TB, path string) {
	t.Helper()
	AssertNoExistsFs(t, vfs.Current(), path)
}

func AssertNoExistsFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.False(t, b.Exists(path), "%s exists", path)
}

func AssertIsDir(t testing.TB, path string) {
	t.Helper()
	AssertIsDirFs(t, vfs.Current(), path)
}

func AssertIsDirFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.True(t, b.IsDir(path), "%s is not a directory", path)
}

func AssertNoDir(t testing.TB, path string) {
	t.Helper()
	AssertNoDirFs(t, vfs.Current(), path)
}

func AssertNoDirFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.False(t, b.IsDir(path), "%s is a directory", path)
}

func AssertIsFile(t testing.TB, path string) {
	t.Helper()
	AssertIsFileFs(t, vfs.Current(), path)
}

func AssertIsFileFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.True(t, b.IsFile(path), "%s is not a file", path)
}

func AssertNoFile(t testing.TB, path string) {
	t.Helper()
	AssertNoFileFs(t, vfs.Current(), path)
}

func AssertNoFileFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.False(t, b.IsFile(path), "%s is a file", path)
}

func AssertIsSymlink(t testing.TB, path string) {
	t.Helper()
	AssertIsSymlinkFs(t, vfs.Current(), path)
}

func AssertIsSymlinkFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.True(t, b.IsSymlink(path), "%s is not a symlink", path)
}

func AssertNoSymlink(t testing.TB, path string) {
	t.Helper()
	AssertNoSymlinkFs(t, vfs.Current(), path)
}

func AssertNoSymlinkFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.False(t, b.IsSymlink(path), "%s is a symlink", path)
}

// AssertMkdirM creates path with mode and returns its absolute form.
func AssertMkdirM(t testing.TB, path string, mode fs.FileMode) string {
	t.Helper()
	return AssertMkdirMFs(t, vfs.Current(), path, mode)
}

func AssertMkdirMFs(t testing.TB, b backend.VirtualFileSystem, path string, mode fs.FileMode) string {
	t.Helper()
	abs := assertAbs(t, b, path)
	got, err := b.MkdirM(path, mode)
	require.NoError(t, err)
	require.Equal(t, abs, got)
	AssertIsDirFs(t, b, abs)

	m, err := b.Mode(abs)
	require.NoError(t, err)
	require.Equal(t, mode.Perm(), m.Perm(), "mode of %s", abs)
	return abs
}

// AssertMkdirP creates path and its parents and returns its absolute form.
func AssertMkdirP(t testing.TB, path string) string {
	t.Helper()
	return AssertMkdirPFs(t, vfs.Current(), path)
}

func AssertMkdirPFs(t testing.TB, b backend.VirtualFileSystem, path string) string {
	t.Helper()
	abs := assertAbs(t, b, path)
	got, err := b.MkdirP(path)
	require.NoError(t, err)
	require.Equal(t, abs, got)
	AssertIsDirFs(t, b, abs)
	return abs
}

// AssertMkfile creates an empty file at path and returns its absolute form.
func AssertMkfile(t testing.TB, path string) string {
	t.Helper()
	return AssertMkfileFs(t, vfs.Current(), path)
}

func AssertMkfileFs(t testing.TB, b backend.VirtualFileSystem, path string) string {
	t.Helper()
	abs := assertAbs(t, b, path)
	got, err := b.Mkfile(path)
	require.NoError(t, err)
	require.Equal(t, abs, got)
	AssertIsFileFs(t, b, abs)
	return abs
}

func AssertReadAll(t testing.TB, path, want string) {
	t.Helper()
	AssertReadAllFs(t, vfs.Current(), path, want)
}

func AssertReadAllFs(t testing.TB, b backend.VirtualFileSystem, path, want string) {
	t.Helper()
	got, err := b.ReadAll(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// AssertReadlink checks the target stored in link.
func AssertReadlink(t testing.TB, link, want string) {
	t.Helper()
	AssertReadlinkFs(t, vfs.Current(), link, want)
}

func AssertReadlinkFs(t testing.TB, b backend.VirtualFileSystem, link, want string) {
	t.Helper()
	got, err := b.Readlink(link)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// AssertReadlinkAbs checks the absolute target of link.
func AssertReadlinkAbs(t testing.TB, link, want string) {
	t.Helper()
	AssertReadlinkAbsFs(t, vfs.Current(), link, want)
}

func AssertReadlinkAbsFs(t testing.TB, b backend.VirtualFileSystem, link, want string) {
	t.Helper()
	got, err := b.ReadlinkAbs(link)
	require.NoError(t, err)
	require.Equal(t, assertAbs(t, b, want), got)
}

// AssertRemove removes a file, link or empty directory and checks it is gone.
func AssertRemove(t testing.TB, path string) {
	t.Helper()
	AssertRemoveFs(t, vfs.Current(), path)
}

func AssertRemoveFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.NoError(t, b.Remove(path))
	AssertNoExistsFs(t, b, path)
}

// AssertRemoveAll removes path recursively and checks it is gone.
func AssertRemoveAll(t testing.TB, path string) {
	t.Helper()
	AssertRemoveAllFs(t, vfs.Current(), path)
}

func AssertRemoveAllFs(t testing.TB, b backend.VirtualFileSystem, path string) {
	t.Helper()
	require.NoError(t, b.RemoveAll(path))
	AssertNoExistsFs(t, b, path)
}

// AssertSymlink creates link pointing at target and returns the absolute link path.
func AssertSymlink(t testing.TB, link, target string) string {
	t.Helper()
	return AssertSymlinkFs(t, vfs.Current(), link, target)
}

func AssertSymlinkFs(t testing.TB, b backend.VirtualFileSystem, link, target string) string {
	t.Helper()
	abs := assertAbs(t, b, link)
	got, err := b.Symlink(link, target)
	require.NoError(t, err)
	require.Equal(t, abs, got)
	AssertIsSymlinkFs(t, b, abs)
	AssertReadlinkAbsFs(t, b, abs, target)
	return abs
}

// AssertWriteAll writes data to path and reads it back.
func AssertWriteAll(t testing.TB, path, data string) {
	t.Helper()
	AssertWriteAllFs(t, vfs.Current(), path, data)
}

func AssertWriteAllFs(t testing.TB, b backend.VirtualFileSystem, path, data string) {
	t.Helper()
	require.NoError(t, b.WriteAll(path, []byte(data)))
	AssertReadAllFs(t, b, path, data)
}

// AssertIterEq checks two sequences yield equal values in the same order.
func AssertIterEq[T any](t testing.TB, want, got iter.Seq[T]) {
	t.Helper()
	require.Equal(t, slices.Collect(want), slices.Collect(got))
}

func assertAbs(t testing.TB, b backend.VirtualFileSystem, path string) string {
	t.Helper()
	abs, err := b.Abs(path)
	require.NoError(t, err)
	return abs
}
