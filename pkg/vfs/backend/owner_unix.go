//go:build unix

package backend

import (
	"io/fs"
	"syscall"

	"github.com/arthur-debert/vfs/pkg/vfs/memfs"
)

func owner(fi fs.FileInfo) (int, int, error) {
	switch st := fi.Sys().(type) {
	case *memfs.Stat:
		return st.Uid, st.Gid, nil
	case *syscall.Stat_t:
		return int(st.Uid), int(st.Gid), nil
	}
	return 0, 0, ErrNoOwner
}
