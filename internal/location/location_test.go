package location

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/alexjbarnes/outline-sync/internal/errors"
	"github.com/alexjbarnes/outline-sync/internal/events"
	"github.com/alexjbarnes/outline-sync/internal/logging"
	"github.com/alexjbarnes/outline-sync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLocator fails the first `failures` calls, then succeeds.
type countingLocator struct {
	calls    atomic.Int32
	failures int32
	dir      string
	delay    time.Duration
}

func (l *countingLocator) Locate(ctx context.Context) (Container, error) {
	n := l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}

	if n <= l.failures {
		return Container{}, fmt.Errorf("lookup %d: %w", n, apperrors.ErrContainerUnavailable)
	}

	return Container{Dir: l.dir}, nil
}

func newResolver(t *testing.T, loc Locator, sink events.Sink) *Resolver {
	t.Helper()
	return NewResolver(t.TempDir(), loc, sink, logging.Discard())
}

// --- DirLocator ---

func TestDirLocator_Exists(t *testing.T) {
	dir := t.TempDir()
	c, err := DirLocator{Dir: dir}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir)
}

func TestDirLocator_Unconfigured(t *testing.T) {
	_, err := DirLocator{}.Locate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrContainerUnavailable)
}

func TestDirLocator_Missing(t *testing.T) {
	_, err := DirLocator{Dir: filepath.Join(t.TempDir(), "missing")}.Locate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrContainerUnavailable)
}

func TestDirLocator_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))

	_, err := DirLocator{Dir: f}.Locate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrContainerUnavailable)
}

// --- Resolver caching ---

func TestResolver_CachesSuccess(t *testing.T) {
	loc := &countingLocator{dir: "/cloud"}
	r := newResolver(t, loc, nil)

	for i := 0; i < 3; i++ {
		c, err := r.Container(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/cloud", c.Dir)
	}

	assert.Equal(t, int32(1), loc.calls.Load())
}

func TestResolver_DoesNotCacheFailure(t *testing.T) {
	loc := &countingLocator{dir: "/cloud", failures: 2}
	r := newResolver(t, loc, nil)

	_, err := r.Container(context.Background())
	require.ErrorIs(t, err, apperrors.ErrContainerUnavailable)

	_, ok := r.Cached()
	assert.False(t, ok)

	_, err = r.Container(context.Background())
	require.Error(t, err)

	c, err := r.Container(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/cloud", c.Dir)
	assert.Equal(t, int32(3), loc.calls.Load())
}

func TestResolver_ConcurrentLookupsShareOneCall(t *testing.T) {
	loc := &countingLocator{dir: "/cloud", delay: 50 * time.Millisecond}
	r := newResolver(t, loc, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Container(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loc.calls.Load())
}

// --- Availability events ---

func TestResolver_RefreshEmitsAvailabilityChanges(t *testing.T) {
	dir := t.TempDir()
	remote := filepath.Join(dir, "cloud")
	require.NoError(t, os.MkdirAll(remote, 0o755))

	sink := events.NewChan(8)
	r := newResolver(t, DirLocator{Dir: remote}, sink)

	assert.True(t, r.Refresh(context.Background()))
	require.Len(t, sink.C, 1)
	assert.Equal(t, events.AccountAvailabilityChanged{Available: true}, <-sink.C)

	require.NoError(t, os.RemoveAll(remote))
	assert.False(t, r.Refresh(context.Background()))

	_, ok := r.Cached()
	assert.False(t, ok, "failed refresh drops the cached handle")

	require.NoError(t, os.MkdirAll(remote, 0o755))
	assert.True(t, r.Refresh(context.Background()))

	require.Len(t, sink.C, 2)
	assert.Equal(t, events.AccountAvailabilityChanged{Available: false}, <-sink.C)
	assert.Equal(t, events.AccountAvailabilityChanged{Available: true}, <-sink.C)
}

func TestResolver_UnavailableAtStartIsReportedOnce(t *testing.T) {
	sink := events.NewChan(8)
	r := newResolver(t, DirLocator{Dir: filepath.Join(t.TempDir(), "missing")}, sink)

	for i := 0; i < 3; i++ {
		assert.False(t, r.Refresh(context.Background()))
	}

	require.Len(t, sink.C, 1)
	assert.Equal(t, events.AccountAvailabilityChanged{Available: false}, <-sink.C)
}

// blockingLocator holds every lookup until release is closed.
type blockingLocator struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (l *blockingLocator) Locate(ctx context.Context) (Container, error) {
	if l.calls.Add(1) == 1 {
		close(l.started)
	}

	select {
	case <-l.release:
		return Container{Dir: "/cloud"}, nil
	case <-ctx.Done():
		return Container{}, ctx.Err()
	}
}

func TestResolver_CancelledCallerDoesNotFailOthers(t *testing.T) {
	loc := &blockingLocator{started: make(chan struct{}), release: make(chan struct{})}
	r := newResolver(t, loc, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)

	go func() {
		_, err := r.Container(first)
		firstErr <- err
	}()

	<-loc.started

	second := make(chan error, 1)

	go func() {
		c, err := r.Container(context.Background())
		if err == nil && c.Dir != "/cloud" {
			err = fmt.Errorf("unexpected container %q", c.Dir)
		}
		second <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(loc.release)
	require.NoError(t, <-second)

	c, ok := r.Cached()
	assert.True(t, ok)
	assert.Equal(t, "/cloud", c.Dir)
	assert.Equal(t, int32(1), loc.calls.Load())
}

// --- Root paths ---

func TestRootPath_Local(t *testing.T) {
	r := NewResolver("/data", &countingLocator{}, nil, logging.Discard())

	assert.Equal(t, filepath.Join("/data", "Documents"), r.RootPath(models.RootDocuments, models.LocationLocal, Container{}))
	assert.Equal(t, filepath.Join("/data", "Attachments"), r.RootPath(models.RootAttachments, models.LocationLocal, Container{Dir: "/ignored"}))
}

func TestRootPath_Remote(t *testing.T) {
	r := NewResolver("/data", &countingLocator{}, nil, logging.Discard())

	got := r.RootPath(models.RootKeyValueStore, models.LocationRemote, Container{Dir: "/cloud"})
	assert.Equal(t, filepath.Join("/cloud", "KeyValueStore"), got)
}

func TestRoots_LocalNeverLooksUpContainer(t *testing.T) {
	loc := &countingLocator{failures: 100}
	r := newResolver(t, loc, nil)

	roots, err := r.Roots(context.Background(), models.LocationLocal)
	require.NoError(t, err)
	assert.Len(t, roots, 3)
	assert.Equal(t, int32(0), loc.calls.Load())
}

func TestRoots_RemoteUnavailable(t *testing.T) {
	r := newResolver(t, &countingLocator{failures: 100}, nil)

	_, err := r.Roots(context.Background(), models.LocationRemote)
	assert.ErrorIs(t, err, apperrors.ErrContainerUnavailable)
}

func TestStore_OpensRootStore(t *testing.T) {
	r := newResolver(t, &countingLocator{dir: "/cloud"}, nil)

	s, err := r.Store(context.Background(), models.RootDocuments, models.LocationRemote)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cloud", "Documents"), s.Dir())
}
