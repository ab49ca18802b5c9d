// Package migrate moves the three storage roots between the local data
// directory and the remote container when remote sync is switched on or
// off. A run clears every destination, waits for all of them, and only
// then moves the roots across.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/events"
	"github.com/alexjbarnes/outline-sync/internal/location"
	"github.com/alexjbarnes/outline-sync/internal/models"
	"github.com/alexjbarnes/outline-sync/internal/state"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=engine.go -destination=mock_engine_test.go -package=migrate

// StatusStore is the persistent sync status register.
type StatusStore interface {
	SyncStatus() (models.SyncStatus, error)
	SetSyncStatus(models.SyncStatus) error
}

// FileMover performs whole-tree filesystem operations on absolute paths.
type FileMover interface {
	Exists(path string) (bool, error)
	RemoveAll(ctx context.Context, path string) error
	MkdirAll(path string) error
	MoveTree(ctx context.Context, src, dst string) error
}

// ContainerResolver finds the remote container and maps roots to
// directories.
type ContainerResolver interface {
	Container(ctx context.Context) (location.Container, error)
	RootPath(root models.StorageRoot, loc models.Location, c location.Container) string
}

// HistoryRecorder keeps a record of the last migration attempt.
type HistoryRecorder interface {
	SetLastMigration(rec state.MigrationRecord) error
}

// Direction is which way a migration moves the roots.
type Direction int

const (
	// ToRemote moves local roots into the remote container.
	ToRemote Direction = iota
	// ToLocal moves remote roots back to the local data directory.
	ToLocal
)

func (d Direction) String() string {
	if d == ToRemote {
		return "enable"
	}

	return "disable"
}

func (d Direction) locations() (src, dst models.Location) {
	if d == ToRemote {
		return models.LocationLocal, models.LocationRemote
	}

	return models.LocationRemote, models.LocationLocal
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds every migration run. An aborted run can leave the
// destinations cleared but not yet filled; running the same direction
// again completes it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithHistory records each run's outcome.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Engine) { e.history = h }
}

// Engine runs bulk migrations. The caller must not run two migrations at
// once against the same status store.
type Engine struct {
	status   StatusStore
	resolver ContainerResolver
	fs       FileMover
	sink     events.Sink
	logger   *slog.Logger
	timeout  time.Duration
	history  HistoryRecorder
	now      func() time.Time
}

// NewEngine creates an Engine. A nil sink discards events.
func NewEngine(status StatusStore, resolver ContainerResolver, fs FileMover, sink events.Sink, logger *slog.Logger, opts ...Option) *Engine {
	if sink == nil {
		sink = events.Discard{}
	}

	e := &Engine{
		status:   status,
		resolver: resolver,
		fs:       fs,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Status returns the current sync status.
func (e *Engine) Status() (models.SyncStatus, error) {
	return e.status.SyncStatus()
}

// EnableRemote moves all three roots into the remote container and sets
// the status to On. Remote copies left over from an earlier enablement
// are discarded, not merged. On failure the status is unchanged.
func (e *Engine) EnableRemote(ctx context.Context) error {
	return e.run(ctx, ToRemote)
}

// DisableRemote moves all three roots back to the local data directory
// and sets the status to Off. It does nothing when remote sync is not in
// use.
func (e *Engine) DisableRemote(ctx context.Context) error {
	return e.run(ctx, ToLocal)
}

// Start runs a migration in its own goroutine and reports the outcome to
// done, which may be nil.
func (e *Engine) Start(ctx context.Context, enable bool, done func(error)) {
	go func() {
		var err error
		if enable {
			err = e.EnableRemote(ctx)
		} else {
			err = e.DisableRemote(ctx)
		}

		if done != nil {
			done(err)
		}
	}()
}

// HandleAccountAvailability reacts to the remote account appearing or
// disappearing. When the account goes away while sync is on, the data
// left in the container is no longer reachable: the status becomes
// OffWithOldData and RemoteDisabled is emitted.
func (e *Engine) HandleAccountAvailability(available bool) error {
	if available {
		return nil
	}

	status, err := e.status.SyncStatus()
	if err != nil {
		return fmt.Errorf("reading sync status: %w", err)
	}

	if status != models.StatusOn {
		return nil
	}

	if err := e.status.SetSyncStatus(models.StatusOffWithOldData); err != nil {
		return fmt.Errorf("saving sync status: %w", err)
	}

	e.logger.Warn("remote account unavailable, remote sync switched off")
	e.sink.Emit(events.RemoteDisabled{})

	return nil
}

func (e *Engine) run(ctx context.Context, dir Direction) error {
	status, err := e.status.SyncStatus()
	if err != nil {
		return fmt.Errorf("reading sync status: %w", err)
	}

	if alreadyAt(dir, status) {
		e.logger.Debug("migration not needed", slog.String("direction", dir.String()), slog.String("status", status.String()))
		return nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID), slog.String("direction", dir.String()))
	started := e.now()

	logger.Info("migration started", slog.String("status", status.String()))
	e.sink.Emit(events.SyncStarted{RunID: runID, Kind: dir.String()})

	err = e.migrate(ctx, logger, dir)
	e.record(logger, runID, dir, started, err)

	if err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		e.sink.Emit(events.SyncFailed{Err: err})

		return err
	}

	logger.Info("migration finished", slog.Duration("elapsed", e.now().Sub(started)))

	if dir == ToRemote {
		e.sink.Emit(events.RemoteEnabled{})
	} else {
		e.sink.Emit(events.RemoteDisabled{})
	}

	return nil
}

// alreadyAt reports whether status already reflects the direction's target.
func alreadyAt(dir Direction, status models.SyncStatus) bool {
	if dir == ToRemote {
		return status == models.StatusOn
	}

	return status == models.StatusOff || status == models.StatusNeverUsed
}

func (e *Engine) migrate(ctx context.Context, logger *slog.Logger, dir Direction) error {
	c, err := e.resolver.Container(ctx)
	if err != nil {
		return fmt.Errorf("resolving remote container: %w", err)
	}

	srcLoc, dstLoc := dir.locations()
	roots := models.AllRoots

	deleteErrs := make([]error, len(roots))

	var deletes errgroup.Group

	for i, root := range roots {
		i, root := i, root

		deletes.Go(func() error {
			dst := e.resolver.RootPath(root, dstLoc, c)
			if err := e.clear(ctx, dst); err != nil {
				// Tolerated: the move below reports the root if the
				// destination is still in the way.
				logger.Warn("clearing destination failed",
					slog.String("root", root.String()),
					slog.String("path", dst),
					slog.String("error", err.Error()),
				)

				deleteErrs[i] = err
			}

			return nil
		})
	}

	// Barrier: no move may start while a delete of its destination is in
	// flight.
	_ = deletes.Wait()

	moveErrs := make([]error, len(roots))

	var (
		moves errgroup.Group
		moved atomic.Int32
	)

	for i, root := range roots {
		i, root := i, root

		moves.Go(func() error {
			src := e.resolver.RootPath(root, srcLoc, c)
			dst := e.resolver.RootPath(root, dstLoc, c)

			if err := e.move(ctx, src, dst); err != nil {
				moveErrs[i] = rootError(root, deleteErrs[i], err)
				return moveErrs[i]
			}

			logger.Debug("root moved", slog.String("root", root.String()), slog.String("from", src), slog.String("to", dst))
			e.sink.Emit(events.SyncProgress{Done: int(moved.Add(1)), Total: len(roots)})

			return nil
		})
	}

	if err := moves.Wait(); err != nil {
		return errors.Join(moveErrs...)
	}

	target := models.StatusOn
	if dir == ToLocal {
		target = models.StatusOff
	}

	if err := e.status.SetSyncStatus(target); err != nil {
		return fmt.Errorf("saving sync status: %w", err)
	}

	return nil
}

func (e *Engine) clear(ctx context.Context, dst string) error {
	exists, err := e.fs.Exists(dst)
	if err != nil {
		return err
	}

	if !exists {
		return nil
	}

	return e.fs.RemoveAll(ctx, dst)
}

// move moves src to dst. A root that was never created at the source is
// created empty at the destination.
func (e *Engine) move(ctx context.Context, src, dst string) error {
	exists, err := e.fs.Exists(src)
	if err != nil {
		return fmt.Errorf("checking %s: %w", src, err)
	}

	if !exists {
		return e.fs.MkdirAll(dst)
	}

	return e.fs.MoveTree(ctx, src, dst)
}

func rootError(root models.StorageRoot, deleteErr, moveErr error) *RootError {
	if deleteErr != nil {
		return &RootError{Root: root, Phase: PhaseDelete, Err: errors.Join(deleteErr, moveErr)}
	}

	return &RootError{Root: root, Phase: PhaseMove, Err: moveErr}
}

func (e *Engine) record(logger *slog.Logger, runID string, dir Direction, started time.Time, runErr error) {
	if e.history == nil {
		return
	}

	rec := state.MigrationRecord{
		RunID:     runID,
		Direction: dir.String(),
		Started:   started,
		Finished:  e.now(),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := e.history.SetLastMigration(rec); err != nil {
		logger.Warn("recording migration failed", slog.String("error", err.Error()))
	}
}
