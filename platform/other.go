//go:build !darwin

package platform

import (
	"time"

	"github.com/adrg/xdg"
)

// otherPlatform serves timestamps and the freedesktop trash. Icons and
// application bundles are macOS concepts and are reported as unsupported.
type otherPlatform struct {
	trash *Trash
}

func newPlatform() Platform {
	return &otherPlatform{trash: NewTrash(xdg.DataHome)}
}

func (p *otherPlatform) Icon(path string) (Icon, error) {
	if err := checkExists(path); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (p *otherPlatform) MoveToTrash(path string) error {
	return p.trash.Move(path)
}

func (p *otherPlatform) CreationDate(path string) (time.Time, error) {
	return CreationDate(path)
}

func (p *otherPlatform) ModificationDate(path string) (time.Time, error) {
	return ModificationDate(path)
}

func (p *otherPlatform) BundlePath(identifier string) (string, bool, error) {
	return "", false, ErrUnsupported
}

func (p *otherPlatform) OpenFiles(files []string, identifier string) error {
	return ErrUnsupported
}
