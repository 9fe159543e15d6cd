// Package platform wraps the operating-system facilities the bridge relies on:
// file icons, trash, file timestamps and application bundles.
package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

var (
	// ErrNotFound is returned when the target path does not exist.
	ErrNotFound = errors.New("path not found")
	// ErrUnsupported is returned for operations the current OS cannot serve.
	ErrUnsupported = errors.New("operation not supported on this platform")
)

// Icon is an OS-rendered file icon. Release must be called when done.
type Icon interface {
	// Name returns the OS-assigned symbolic name, or "" if there is none.
	Name() string
	// Raw returns the raw bitmap representation, or nil if unavailable.
	Raw() []byte
	// PNG encodes the icon as PNG.
	PNG() ([]byte, error)
	Release()
}

// Platform abstracts OS-specific operations used by the bridge.
type Platform interface {
	// Icon returns the icon the OS shows for path.
	Icon(path string) (Icon, error)

	// MoveToTrash moves path to the user's trash.
	MoveToTrash(path string) error

	// CreationDate returns the file's creation (birth) time.
	CreationDate(path string) (time.Time, error)

	// ModificationDate returns the file's last modification time.
	ModificationDate(path string) (time.Time, error)

	// BundlePath returns the install location of the application with the
	// given bundle identifier. ok is false when no such application exists.
	BundlePath(identifier string) (path string, ok bool, err error)

	// OpenFiles opens files with the application identified by identifier.
	OpenFiles(files []string, identifier string) error
}

// New returns the Platform implementation for the current OS.
func New() Platform {
	return newPlatform()
}

// checkExists maps a missing path to ErrNotFound.
func checkExists(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return statError(path, err)
	}
	return nil
}

func statError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("stat %s: %w", path, err)
}

// CreationDate returns the creation time of path using the OS stat call.
func CreationDate(path string) (time.Time, error) {
	created, _, err := fileTimes(path)
	return created, err
}

// ModificationDate returns the modification time of path.
func ModificationDate(path string) (time.Time, error) {
	_, modified, err := fileTimes(path)
	return modified, err
}

// EpochSeconds converts t to fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
