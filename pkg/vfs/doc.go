// Package vfs forwards filesystem calls to a process-wide, swappable backend.
//
// Every function in this package fetches the current backend and calls the method of the
// same name on it, returning the result untouched:
//
//	vfs.SetMemfs()
//	dir, _ := vfs.MkdirP("/tmp/work")
//	vfs.WriteAll(dir+"/file", []byte("data"))
//	data, _ := vfs.ReadAll(dir + "/file")
//
// The backend starts out as the operating system filesystem (Stdfs). Tests typically switch
// to the in-memory backend (Memfs) with SetMemfs so that nothing touches the disk; Reset
// restores a fresh Stdfs. A backend obtained with Current keeps working on the same
// instance after the global backend is replaced.
//
// Swapping the backend is cheap and safe from any goroutine, but calls already in flight
// finish against the backend they started with. Code that needs several calls to see the
// same backend should take a handle with Current and use it directly.
//
// Package plan runs batches of steps against any backend and package vfstest holds the
// assertions used by tests of code built on this package.
package vfs
