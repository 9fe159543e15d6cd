package platform

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Trash implements the freedesktop.org trash layout under a data directory:
// files go to Trash/files, metadata to Trash/info/<name>.trashinfo.
type Trash struct {
	root string
	now  func() time.Time
}

// NewTrash returns the trash under dataHome (usually $XDG_DATA_HOME).
func NewTrash(dataHome string) *Trash {
	return &Trash{
		root: filepath.Join(dataHome, "Trash"),
		now:  time.Now,
	}
}

// Move moves path into the trash. Only same-filesystem moves are supported.
func (t *Trash) Move(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := checkExists(abs); err != nil {
		return err
	}

	filesDir := filepath.Join(t.root, "files")
	infoDir := filepath.Join(t.root, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create trash dir: %w", err)
		}
	}

	name, info, err := t.reserve(infoDir, filepath.Base(abs))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(info, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapePath(abs), t.now().Format("2006-01-02T15:04:05")); err != nil {
		info.Close()
		os.Remove(info.Name())
		return fmt.Errorf("write trash info: %w", err)
	}
	if err := info.Close(); err != nil {
		os.Remove(info.Name())
		return fmt.Errorf("close trash info: %w", err)
	}

	if err := os.Rename(abs, filepath.Join(filesDir, name)); err != nil {
		os.Remove(info.Name())
		return fmt.Errorf("move %s to trash: %w", abs, err)
	}
	return nil
}

// reserve claims a unique trash name by exclusively creating its info file.
func (t *Trash) reserve(infoDir, base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; i < 10000; i++ {
		name := base
		if i > 1 {
			name = stem + "." + strconv.Itoa(i) + ext
		}
		f, err := os.OpenFile(filepath.Join(infoDir, name+".trashinfo"), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			return name, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, fmt.Errorf("create trash info: %w", err)
		}
	}
	return "", nil, fmt.Errorf("no free trash name for %s", base)
}

// escapePath percent-encodes each path segment, keeping the separators.
func escapePath(p string) string {
	segs := strings.Split(filepath.ToSlash(p), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
