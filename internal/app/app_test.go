package app

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.aimuz.me/foto/bridge"
	"go.aimuz.me/foto/fileopen"
	"go.aimuz.me/foto/iconcache"
	"go.aimuz.me/foto/imageutil"
	"go.aimuz.me/foto/internal/types"
	"go.aimuz.me/foto/platform"
)

type emitted struct {
	name string
	data any
}

type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) emit(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{name, data})
}

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	d := bridge.NewDispatcher(
		iconcache.New(iconcache.NewMemoryKeySet()),
		fileopen.New(),
		platform.New(),
		imageutil.New(imageutil.Options{}),
	)
	s := New(d, "test")
	rec := &recorder{}
	s.emitter = rec.emit
	t.Cleanup(func() { _ = s.ServiceShutdown() })
	return s, rec
}

func TestInitialFileAndStream(t *testing.T) {
	s, rec := newTestService(t)

	assert.Nil(t, s.GetInitialFile())

	s.RecordOpen("/a.jpg")
	s.RecordOpen("/b.jpg")
	require.NotNil(t, s.GetInitialFile())
	assert.Equal(t, "/a.jpg", *s.GetInitialFile())

	sub := s.SubscribeFileOpenEvents()
	require.NotEmpty(t, sub)
	s.RecordOpen("/c.jpg")

	assert.Equal(t, []emitted{
		{EventFileOpened, types.FileOpened{Subscription: sub, Path: "/c.jpg"}},
	}, rec.events)
	assert.Equal(t, "/a.jpg", *s.GetInitialFile())
}

func TestResubscribeReplaces(t *testing.T) {
	s, rec := newTestService(t)

	first := s.SubscribeFileOpenEvents()
	second := s.SubscribeFileOpenEvents()
	assert.NotEqual(t, first, second)

	s.RecordOpen("/a.jpg")
	s.UnsubscribeFileOpenEvents()
	s.RecordOpen("/b.jpg")

	require.Len(t, rec.events, 1)
	assert.Equal(t, second, rec.events[0].data.(types.FileOpened).Subscription)
}

func TestRecordOpenNormalizesToNFC(t *testing.T) {
	s, _ := newTestService(t)

	s.RecordOpen("/photos/Cafe\u0301.jpg")
	assert.Equal(t, "/photos/Caf\u00e9.jpg", *s.GetInitialFile())
}

func TestRecordOpenFilesAndURLs(t *testing.T) {
	s, rec := newTestService(t)
	s.SubscribeFileOpenEvents()

	s.RecordOpenFiles(nil)
	s.RecordOpenFiles([]string{"/x.png", "/y.png"})
	s.RecordOpenURLs([]*url.URL{{Scheme: "file", Path: "/z.png"}, {Scheme: "file", Path: "/w.png"}})

	require.Len(t, rec.events, 2)
	assert.Equal(t, "/x.png", rec.events[0].data.(types.FileOpened).Path)
	assert.Equal(t, "/z.png", rec.events[1].data.(types.FileOpened).Path)
	assert.Equal(t, "/x.png", *s.GetInitialFile())
}

func openedPaths(rec *recorder) []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var paths []string
	for _, e := range rec.events {
		paths = append(paths, e.data.(types.FileOpened).Path)
	}
	return paths
}

func TestOpenedWithFileCoalescesBurst(t *testing.T) {
	s, rec := newTestService(t)
	clock := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return clock }
	s.SubscribeFileOpenEvents()

	// A multi-file open arrives as one callback per file.
	s.openedWithFile("/burst/a.jpg")
	clock = clock.Add(10 * time.Millisecond)
	s.openedWithFile("/burst/b.jpg")
	clock = clock.Add(10 * time.Millisecond)
	s.openedWithFile("/burst/c.jpg")

	clock = clock.Add(time.Second)
	s.openedWithFile("")
	s.openedWithFile("/later.jpg")

	assert.Equal(t, []string{"/burst/a.jpg", "/later.jpg"}, openedPaths(rec))
	assert.Equal(t, "/burst/a.jpg", *s.GetInitialFile())
}

func TestLaunchedWithURL(t *testing.T) {
	s, rec := newTestService(t)
	clock := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return clock }
	s.SubscribeFileOpenEvents()

	s.launchedWithURL("foto://settings")
	s.launchedWithURL("%zz")
	s.launchedWithURL("file:///photos/Cafe%CC%81.jpg")
	clock = clock.Add(10 * time.Millisecond)
	s.launchedWithURL("file:///photos/other.jpg")
	clock = clock.Add(time.Second)
	s.launchedWithURL("file:///photos/next.jpg")

	assert.Equal(t, []string{"/photos/Caf\u00e9.jpg", "/photos/next.jpg"}, openedPaths(rec))
}

func TestDatesAndErrors(t *testing.T) {
	s, _ := newTestService(t)

	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	mod, err := s.GetModificationDate(path)
	require.NoError(t, err)
	assert.Greater(t, mod, 0.0)

	_, err = s.GetCreationDate(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(bridge.CodeNotFound))

	_, err = s.TransformImage(context.Background(), types.TransformRequest{Filepath: path, Transformation: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(bridge.CodeMalformedRequest))
}
