//go:build !darwin && !linux

package platform

import (
	"os"
	"time"
)

func fileTimes(path string) (created, modified time.Time, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, statError(path, err)
	}
	return info.ModTime(), info.ModTime(), nil
}
