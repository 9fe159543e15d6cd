// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/foto/bridge"
	"go.aimuz.me/foto/internal/types"
)

// Service exposes the bridge to the frontend.
// Every method delegates to the Dispatcher; errors carry a bridge code.
type Service struct {
	d *bridge.Dispatcher

	// UI references - set via Init
	app *application.App

	// emitter is swapped in tests
	emitter func(name string, data any)

	mu           sync.Mutex
	subscription string

	// now is swapped in tests
	now      func() time.Time
	openMu   sync.Mutex
	lastOpen time.Time

	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(d *bridge.Dispatcher, version string) *Service {
	return &Service{d: d, version: version, now: time.Now}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init wires the service to the Wails application and starts listening
// for files the OS asks us to open.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App) {
	s.app = app

	app.Event.OnApplicationEvent(events.Common.ApplicationOpenedWithFile, func(e *application.ApplicationEvent) {
		s.openedWithFile(e.Context().Filename())
	})
	app.Event.OnApplicationEvent(events.Common.ApplicationLaunchedWithUrl, func(e *application.ApplicationEvent) {
		s.launchedWithURL(e.Context().URL())
	})
}

// ServiceShutdown releases the icon key set when the application quits.
func (s *Service) ServiceShutdown() error {
	s.d.Unsubscribe()
	if err := s.d.Close(); err != nil {
		slog.Error("close dispatcher", "error", err)
		return err
	}
	return nil
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.emitter != nil {
		s.emitter(name, data)
		return
	}
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// File handler
// ─────────────────────────────────────────────────────────────────────────────

// GetInitialFile returns the file the application was launched with.
func (s *Service) GetInitialFile() *string {
	path, ok := s.d.InitialFile()
	if !ok {
		return nil
	}
	return &path
}

// SubscribeFileOpenEvents starts pushing EventFileOpened for every file
// opened from now on. It replaces any earlier subscription.
func (s *Service) SubscribeFileOpenEvents() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscription = s.d.Subscribe(func(subscription, path string) {
		s.emit(EventFileOpened, types.FileOpened{Subscription: subscription, Path: path})
	})
	return s.subscription
}

// UnsubscribeFileOpenEvents stops pushing file-open events.
func (s *Service) UnsubscribeFileOpenEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.d.Unsubscribe()
	s.subscription = ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Platform utils
// ─────────────────────────────────────────────────────────────────────────────

// GetPlatformIcon returns the icon for path. PNG is only set the first
// time a key is seen.
func (s *Service) GetPlatformIcon(path string) (types.PlatformIcon, error) {
	icon, err := s.d.PlatformIcon(path)
	return icon, coded(err)
}

func (s *Service) MoveToTrash(path string) (bool, error) {
	ok, err := s.d.MoveToTrash(path)
	return ok, coded(err)
}

func (s *Service) BundlePathForIdentifier(identifier string) (*string, error) {
	path, ok, err := s.d.BundlePath(identifier)
	if err != nil || !ok {
		return nil, coded(err)
	}
	return &path, nil
}

func (s *Service) OpenFilesWithBundleIdentifier(req types.OpenFilesRequest) (bool, error) {
	ok, err := s.d.OpenFiles(req)
	return ok, coded(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// File and image utils
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) GetCreationDate(path string) (float64, error) {
	t, err := s.d.CreationDate(path)
	return t, coded(err)
}

func (s *Service) GetModificationDate(path string) (float64, error) {
	t, err := s.d.ModificationDate(path)
	return t, coded(err)
}

// GetImageCreationDate prefers the EXIF capture time over the file's.
func (s *Service) GetImageCreationDate(path string) (float64, error) {
	t, err := s.d.ImageCreationDate(path)
	return t, coded(err)
}

func (s *Service) TransformImage(ctx context.Context, req types.TransformRequest) (bool, error) {
	ok, err := s.d.TransformImage(ctx, req)
	return ok, coded(err)
}

func (s *Service) LosslessRotate(ctx context.Context, path string) (bool, error) {
	ok, err := s.d.LosslessRotate(ctx, path)
	return ok, coded(err)
}

// coded attaches a bridge error code so the frontend can tell failures apart.
func coded(err error) error {
	if err == nil {
		return nil
	}
	return bridge.Classify(err)
}
