//go:build !unix

package backend

import (
	"io/fs"

	"github.com/arthur-debert/vfs/pkg/vfs/memfs"
)

func owner(fi fs.FileInfo) (int, int, error) {
	if st, ok := fi.Sys().(*memfs.Stat); ok {
		return st.Uid, st.Gid, nil
	}
	return 0, 0, ErrNoOwner
}
