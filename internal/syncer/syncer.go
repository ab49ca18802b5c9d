// Package syncer drives file transfers between the local and remote
// copies of the storage roots while remote sync is on. Each pass lists
// both sides, derives a plan from the path sets and copies or trashes
// files one at a time.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/diff"
	"github.com/alexjbarnes/outline-sync/internal/docstore"
	"github.com/alexjbarnes/outline-sync/internal/events"
	"github.com/alexjbarnes/outline-sync/internal/models"
	"github.com/alexjbarnes/outline-sync/internal/trash"
	"github.com/google/uuid"
)

// StatusReader reports the current sync status.
type StatusReader interface {
	SyncStatus() (models.SyncStatus, error)
}

// StoreResolver opens the store of a root in a location and checks
// whether the remote container is reachable.
type StoreResolver interface {
	Store(ctx context.Context, root models.StorageRoot, loc models.Location) (*docstore.Store, error)
	Refresh(ctx context.Context) bool
}

// Result counts what a pass did.
type Result struct {
	Pushed  int
	Pulled  int
	Trashed int
}

func (r *Result) add(o Result) {
	r.Pushed += o.Pushed
	r.Pulled += o.Pulled
	r.Trashed += o.Trashed
}

// Syncer runs transfer passes.
type Syncer struct {
	status StatusReader
	stores StoreResolver
	sink   events.Sink
	logger *slog.Logger
}

// New creates a Syncer. A nil sink discards events.
func New(status StatusReader, stores StoreResolver, sink events.Sink, logger *slog.Logger) *Syncer {
	if sink == nil {
		sink = events.Discard{}
	}

	return &Syncer{status: status, stores: stores, sink: sink, logger: logger}
}

func (s *Syncer) pair(ctx context.Context, root models.StorageRoot) (local, remote *docstore.Store, err error) {
	local, err = s.stores.Store(ctx, root, models.LocationLocal)
	if err != nil {
		return nil, nil, err
	}

	remote, err = s.stores.Store(ctx, root, models.LocationRemote)
	if err != nil {
		return nil, nil, err
	}

	return local, remote, nil
}

// Plan lists both sides of root and returns the actions that bring them
// into agreement.
func (s *Syncer) Plan(ctx context.Context, root models.StorageRoot) (diff.Plan, error) {
	local, remote, err := s.pair(ctx, root)
	if err != nil {
		return diff.Plan{}, err
	}

	localPaths, err := local.List(ctx)
	if err != nil {
		return diff.Plan{}, err
	}

	remotePaths, err := remote.List(ctx)
	if err != nil {
		return diff.Plan{}, err
	}

	return diff.NewPlan(diff.NewSet(localPaths...), diff.NewSet(remotePaths...)), nil
}

// Apply carries out plan on root. A failing item does not stop the
// others; the failures are joined into the returned error.
func (s *Syncer) Apply(ctx context.Context, root models.StorageRoot, plan diff.Plan) (Result, error) {
	var res Result

	local, remote, err := s.pair(ctx, root)
	if err != nil {
		return res, err
	}

	localTrash := trash.NewManager(local, s.logger)
	remoteTrash := trash.NewManager(remote, s.logger)

	total := plan.Len()
	done := 0

	var errs []error

	step := func(action, p string, err error) {
		done++

		if err != nil {
			s.logger.Warn("transfer failed",
				slog.String("root", root.String()),
				slog.String("action", action),
				slog.String("path", p),
				slog.String("error", err.Error()),
			)

			errs = append(errs, fmt.Errorf("%s %s/%s: %w", action, root, p, err))
		}

		s.sink.Emit(events.SyncProgress{Done: done, Total: total})
	}

	for _, p := range plan.Push {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := remote.CopyFrom(ctx, local, p)
		if err == nil {
			res.Pushed++
		}

		step("push", p, err)
	}

	for _, p := range plan.Pull {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := local.CopyFrom(ctx, remote, p)
		if err == nil {
			res.Pulled++
		}

		step("pull", p, err)
	}

	for _, p := range plan.TrashRemote {
		_, err := remoteTrash.Delete(p)
		if err == nil {
			res.Trashed++
		}

		step("trash remote", p, err)
	}

	for _, p := range plan.TrashLocal {
		_, err := localTrash.Delete(p)
		if err == nil {
			res.Trashed++
		}

		step("trash local", p, err)
	}

	return res, errors.Join(errs...)
}

// SyncOnce runs a pass over every root. It does nothing unless remote
// sync is on.
func (s *Syncer) SyncOnce(ctx context.Context) (Result, error) {
	var total Result

	status, err := s.status.SyncStatus()
	if err != nil {
		return total, fmt.Errorf("reading sync status: %w", err)
	}

	if status != models.StatusOn {
		s.logger.Debug("transfer skipped", slog.String("status", status.String()))
		return total, nil
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))

	s.sink.Emit(events.SyncStarted{RunID: runID, Kind: "transfer"})

	var errs []error

	for _, root := range models.AllRoots {
		plan, err := s.Plan(ctx, root)
		if err != nil {
			errs = append(errs, fmt.Errorf("planning %s: %w", root, err))
			continue
		}

		if plan.Empty() {
			continue
		}

		logger.Info("applying plan",
			slog.String("root", root.String()),
			slog.Int("push", len(plan.Push)),
			slog.Int("pull", len(plan.Pull)),
			slog.Int("trash_remote", len(plan.TrashRemote)),
			slog.Int("trash_local", len(plan.TrashLocal)),
		)

		res, err := s.Apply(ctx, root, plan)
		total.add(res)

		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.sink.Emit(events.SyncFailed{Err: err})
		return total, err
	}

	s.sink.Emit(events.SyncCompleted{Pushed: total.Pushed, Pulled: total.Pulled, Trashed: total.Trashed})

	return total, nil
}

// Run performs a pass immediately, then on every tick of interval and
// every signal on changes, until ctx is cancelled. changes may be nil.
// Before each pass the remote container is looked up again so that
// account availability changes are noticed.
func (s *Syncer) Run(ctx context.Context, interval time.Duration, changes <-chan struct{}) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("transfer loop started", slog.Duration("interval", interval))

	for {
		s.pass(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-changes:
		}
	}
}

func (s *Syncer) pass(ctx context.Context) {
	if !s.stores.Refresh(ctx) {
		s.logger.Debug("remote container unavailable, skipping pass")
		return
	}

	res, err := s.SyncOnce(ctx)
	if err != nil {
		s.logger.Warn("transfer pass failed", slog.String("error", err.Error()))
		return
	}

	if res != (Result{}) {
		s.logger.Info("transfer pass finished",
			slog.Int("pushed", res.Pushed),
			slog.Int("pulled", res.Pulled),
			slog.Int("trashed", res.Trashed),
		)
	}
}
