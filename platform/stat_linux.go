//go:build linux

package platform

import (
	"time"

	"golang.org/x/sys/unix"
)

func fileTimes(path string) (created, modified time.Time, err error) {
	var stx unix.Statx_t
	mask := unix.STATX_BTIME | unix.STATX_MTIME
	if err := unix.Statx(unix.AT_FDCWD, path, 0, mask, &stx); err != nil {
		return time.Time{}, time.Time{}, statError(path, err)
	}

	modified = time.Unix(stx.Mtime.Sec, int64(stx.Mtime.Nsec))
	// Not every filesystem records a birth time.
	if stx.Mask&unix.STATX_BTIME != 0 {
		created = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	} else {
		created = modified
	}
	return created, modified, nil
}
