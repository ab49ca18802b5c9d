// Package location resolves where the three storage roots live: under
// the local data directory, or inside the remote ubiquitous container
// once that container has been discovered.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/docstore"
	apperrors "github.com/alexjbarnes/outline-sync/internal/errors"
	"github.com/alexjbarnes/outline-sync/internal/events"
	"github.com/alexjbarnes/outline-sync/internal/models"
	"golang.org/x/sync/singleflight"
)

// lookupTimeout bounds a single shared container lookup.
const lookupTimeout = 30 * time.Second

// Container is a handle to a discovered remote container.
type Container struct {
	Dir string
}

// Locator discovers the remote container. Lookups may be slow and may
// fail transiently.
type Locator interface {
	Locate(ctx context.Context) (Container, error)
}

// DirLocator finds the container at a fixed directory, typically the
// mount point of a cloud drive. The container is available when the
// directory exists.
type DirLocator struct {
	Dir string
}

// Locate returns the container if Dir is an existing directory.
func (l DirLocator) Locate(ctx context.Context) (Container, error) {
	if err := ctx.Err(); err != nil {
		return Container{}, err
	}

	if l.Dir == "" {
		return Container{}, fmt.Errorf("no remote directory configured: %w", apperrors.ErrContainerUnavailable)
	}

	info, err := os.Stat(l.Dir)
	if err != nil {
		return Container{}, fmt.Errorf("remote directory %s: %v: %w", l.Dir, err, apperrors.ErrContainerUnavailable)
	}

	if !info.IsDir() {
		return Container{}, fmt.Errorf("remote path %s is not a directory: %w", l.Dir, apperrors.ErrContainerUnavailable)
	}

	abs, err := filepath.Abs(l.Dir)
	if err != nil {
		return Container{}, fmt.Errorf("resolving remote directory: %w", err)
	}

	return Container{Dir: abs}, nil
}

// Resolver maps storage roots to directories. The remote container
// handle is cached once found; failed lookups are not cached, so every
// call retries until one succeeds. Concurrent lookups share one call to
// the Locator. Safe for concurrent use.
type Resolver struct {
	localDir string
	locator  Locator
	sink     events.Sink
	logger   *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	cached    *Container
	available *bool
}

// NewResolver creates a Resolver. localDir must be absolute. A nil sink
// discards availability events.
func NewResolver(localDir string, locator Locator, sink events.Sink, logger *slog.Logger) *Resolver {
	if sink == nil {
		sink = events.Discard{}
	}

	return &Resolver{
		localDir: localDir,
		locator:  locator,
		sink:     sink,
		logger:   logger,
	}
}

// LocalDir returns the local data directory.
func (r *Resolver) LocalDir() string {
	return r.localDir
}

// Container returns the remote container, looking it up if it has not
// been found yet. Errors wrap ErrContainerUnavailable when the container
// is simply not there.
func (r *Resolver) Container(ctx context.Context) (Container, error) {
	if c, ok := r.Cached(); ok {
		return c, nil
	}

	return r.lookup(ctx)
}

// Refresh forces a new lookup, bypassing the cache. A failed lookup
// drops the cached handle. It returns whether the container is
// available.
func (r *Resolver) Refresh(ctx context.Context) bool {
	_, err := r.lookup(ctx)
	if err != nil {
		r.mu.Lock()
		r.cached = nil
		r.mu.Unlock()
	}

	return err == nil
}

// Cached returns the cached container handle without any I/O.
func (r *Resolver) Cached() (Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cached == nil {
		return Container{}, false
	}

	return *r.cached, true
}

// lookup runs one shared Locate call. The call is detached from the
// caller's cancellation, since other callers may be waiting on it; each
// caller stops waiting when its own ctx is done.
func (r *Resolver) lookup(ctx context.Context) (Container, error) {
	ch := r.group.DoChan("container", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		c, err := r.locator.Locate(lctx)
		if err != nil {
			return Container{}, err
		}

		r.mu.Lock()
		r.cached = &c
		r.mu.Unlock()

		return c, nil
	})

	var (
		v   any
		err error
	)

	select {
	case <-ctx.Done():
		return Container{}, ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}

	switch {
	case err == nil:
		r.setAvailable(true)
	case errors.Is(err, apperrors.ErrContainerUnavailable):
		r.setAvailable(false)
	}

	if err != nil {
		r.logger.Debug("remote container lookup failed", slog.String("error", err.Error()))
		return Container{}, err
	}

	return v.(Container), nil
}

// setAvailable records the latest availability and emits an event on
// the first observation and whenever it differs from the previous one.
func (r *Resolver) setAvailable(now bool) {
	r.mu.Lock()
	prev := r.available
	r.available = &now
	r.mu.Unlock()

	if prev == nil || *prev != now {
		r.logger.Info("remote account availability changed", slog.Bool("available", now))
		r.sink.Emit(events.AccountAvailabilityChanged{Available: now})
	}
}

// RootPath returns the directory of root in the given location. For the
// remote location c must be a resolved container; for the local location
// c is ignored.
func (r *Resolver) RootPath(root models.StorageRoot, loc models.Location, c Container) string {
	if loc == models.LocationRemote {
		return filepath.Join(c.Dir, root.DirName())
	}

	return filepath.Join(r.localDir, root.DirName())
}

// Roots resolves the directories of all three roots in a location.
func (r *Resolver) Roots(ctx context.Context, loc models.Location) (map[models.StorageRoot]string, error) {
	var c Container

	if loc == models.LocationRemote {
		var err error

		c, err = r.Container(ctx)
		if err != nil {
			return nil, err
		}
	}

	out := make(map[models.StorageRoot]string, len(models.AllRoots))
	for _, root := range models.AllRoots {
		out[root] = r.RootPath(root, loc, c)
	}

	return out, nil
}

// Store opens the document store of one root in one location.
func (r *Resolver) Store(ctx context.Context, root models.StorageRoot, loc models.Location) (*docstore.Store, error) {
	var c Container

	if loc == models.LocationRemote {
		var err error

		c, err = r.Container(ctx)
		if err != nil {
			return nil, err
		}
	}

	return docstore.NewStore(r.RootPath(root, loc, c))
}
