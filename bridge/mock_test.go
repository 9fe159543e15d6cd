package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.aimuz.me/foto/fileopen"
	"go.aimuz.me/foto/iconcache"
	"go.aimuz.me/foto/imageutil"
	"go.aimuz.me/foto/platform"
)

type mockIcon struct {
	name   string
	raw    []byte
	png    []byte
	pngErr error

	renders  *atomic.Int32
	released atomic.Bool
}

func (i *mockIcon) Name() string { return i.name }
func (i *mockIcon) Raw() []byte  { return i.raw }
func (i *mockIcon) Release()     { i.released.Store(true) }

func (i *mockIcon) PNG() ([]byte, error) {
	i.renders.Add(1)
	if i.pngErr != nil {
		return nil, i.pngErr
	}
	return i.png, nil
}

type mockPlatform struct {
	mu      sync.Mutex
	icons   map[string]*mockIcon
	dates   map[string]time.Time
	bundles map[string]string
	trashed []string
	opened  map[string][]string

	renders atomic.Int32
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		icons:   make(map[string]*mockIcon),
		dates:   make(map[string]time.Time),
		bundles: make(map[string]string),
		opened:  make(map[string][]string),
	}
}

func (m *mockPlatform) addIcon(path string, icon *mockIcon) *mockIcon {
	m.mu.Lock()
	defer m.mu.Unlock()
	icon.renders = &m.renders
	m.icons[path] = icon
	return icon
}

func (m *mockPlatform) Icon(path string) (platform.Icon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	icon, ok := m.icons[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", platform.ErrNotFound, path)
	}
	return icon, nil
}

func (m *mockPlatform) MoveToTrash(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dates[path]; !ok {
		return fmt.Errorf("%w: %s", platform.ErrNotFound, path)
	}
	m.trashed = append(m.trashed, path)
	return nil
}

func (m *mockPlatform) CreationDate(path string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.dates[path]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", platform.ErrNotFound, path)
	}
	return t, nil
}

func (m *mockPlatform) ModificationDate(path string) (time.Time, error) {
	t, err := m.CreationDate(path)
	return t.Add(time.Hour), err
}

func (m *mockPlatform) BundlePath(identifier string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path, ok := m.bundles[identifier]
	return path, ok, nil
}

func (m *mockPlatform) OpenFiles(files []string, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bundles[identifier]; !ok {
		return errors.New("application not found: " + identifier)
	}
	m.opened[identifier] = append(m.opened[identifier], files...)
	return nil
}

type imageCall struct {
	path      string
	transform imageutil.Transform
	quality   float64
	auto      bool
}

type mockImages struct {
	mu    sync.Mutex
	calls []imageCall
	err   error
}

func (m *mockImages) Transform(_ context.Context, path string, t imageutil.Transform, quality float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, imageCall{path: path, transform: t, quality: quality})
	return m.err == nil, m.err
}

func (m *mockImages) AutoRotate(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, imageCall{path: path, auto: true})
	return m.err == nil, m.err
}

func newTestDispatcher() (*Dispatcher, *mockPlatform, *mockImages) {
	plat := newMockPlatform()
	images := &mockImages{}
	d := NewDispatcher(iconcache.New(iconcache.NewMemoryKeySet()), fileopen.New(), plat, images)
	return d, plat, images
}
