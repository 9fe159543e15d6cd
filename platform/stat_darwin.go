//go:build darwin

package platform

import (
	"time"

	"golang.org/x/sys/unix"
)

func fileTimes(path string) (created, modified time.Time, err error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, time.Time{}, statError(path, err)
	}
	created = time.Unix(st.Birthtimespec.Unix())
	modified = time.Unix(st.Mtimespec.Unix())
	return created, modified, nil
}
