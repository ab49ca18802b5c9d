// Package trash implements soft delete for documents and attachments.
// Deleting renames an item in place with the trash prefix; recovering
// renames it back. Nothing is physically removed until the item is
// purged from the trash.
package trash

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/docstore"
	apperrors "github.com/alexjbarnes/outline-sync/internal/errors"
)

// PurgeError reports a failed purge of one trashed item.
type PurgeError struct {
	Item string
	Err  error
}

func (e *PurgeError) Error() string {
	return fmt.Sprintf("purging %s: %v", e.Item, e.Err)
}

func (e *PurgeError) Unwrap() error {
	return e.Err
}

// Entry is one item in the trash.
type Entry struct {
	// Path is the on-disk relative path, prefix included.
	Path string
	// Name is the display name: last component without the prefix.
	Name string
	// TrashedAt is when the item was moved to the trash. Zero when the
	// platform does not record it.
	TrashedAt time.Time
}

// Manager applies trash transitions to the items of one store.
type Manager struct {
	store  *docstore.Store
	peer   *docstore.Store
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPeer binds the other copy of the same root. Purges and recoveries
// are then applied to both copies, so the next transfer pass has nothing
// to bring back. Deletes stay local; the transfer pass carries them.
func WithPeer(peer *docstore.Store) Option {
	return func(m *Manager) {
		m.peer = peer
	}
}

// NewManager creates a Manager for store.
func NewManager(store *docstore.Store, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{store: store, logger: logger}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Delete moves a live item into the trash with a single rename and
// returns its new path. The item is never absent from both names.
func (m *Manager) Delete(item string) (string, error) {
	item = docstore.SlashPath(item)
	if docstore.IsTrashed(item) {
		return "", fmt.Errorf("deleting %s: %w", item, apperrors.ErrAlreadyTrashed)
	}

	trashed := docstore.AddTrashPrefix(item)

	if err := m.store.Rename(item, trashed); err != nil {
		if errors.Is(err, apperrors.ErrDestinationExists) {
			return "", fmt.Errorf("deleting %s: %w", item, apperrors.ErrTrashOccupied)
		}

		return "", fmt.Errorf("deleting %s: %w", item, err)
	}

	m.logger.Info("moved to trash", slog.String("item", item), slog.String("path", trashed))

	return trashed, nil
}

// Recover renames a trashed item back to its live name and returns it.
// A live item is rejected with ErrNotTrashed before anything is touched.
func (m *Manager) Recover(item string) (string, error) {
	item = docstore.SlashPath(item)
	if !docstore.IsTrashed(item) {
		return "", fmt.Errorf("recovering %s: %w", item, apperrors.ErrNotTrashed)
	}

	live := docstore.StripTrashPrefix(item)

	if err := m.store.Rename(item, live); err != nil {
		if errors.Is(err, apperrors.ErrDestinationExists) {
			return "", fmt.Errorf("recovering %s: %w", item, apperrors.ErrRecoverTargetExists)
		}

		return "", fmt.Errorf("recovering %s: %w", item, err)
	}

	if m.peer != nil {
		if err := m.recoverPeer(item, live); err != nil {
			return live, fmt.Errorf("recovering %s on the other copy: %w", item, err)
		}
	}

	m.logger.Info("recovered from trash", slog.String("item", live))

	return live, nil
}

// recoverPeer renames the peer's trash entry back when the peer holds one
// and its live name is free. Otherwise the next pass would re-trash the
// recovered item.
func (m *Manager) recoverPeer(item, live string) error {
	trashed, err := m.peer.Exists(item)
	if err != nil || !trashed {
		return err
	}

	taken, err := m.peer.Exists(live)
	if err != nil || taken {
		return err
	}

	return m.peer.Rename(item, live)
}

// Purge irreversibly deletes a trashed item. For a document it also
// removes the folder holding its nested children, unless a live document
// of the same name now owns that folder. Live items are rejected with
// ErrNotTrashed: nothing goes from live to gone without passing through
// the trash.
func (m *Manager) Purge(item string) error {
	item = docstore.SlashPath(item)
	if !docstore.IsTrashed(item) {
		return fmt.Errorf("purging %s: %w", item, apperrors.ErrNotTrashed)
	}

	exists, err := m.store.Exists(item)
	if err != nil {
		return &PurgeError{Item: item, Err: err}
	}

	if !exists {
		return &PurgeError{Item: item, Err: fs.ErrNotExist}
	}

	// The peer goes first: if it fails, the local trash entry is still
	// there to retry from.
	if m.peer != nil {
		if err := m.purgePeer(item); err != nil {
			return &PurgeError{Item: item, Err: fmt.Errorf("other copy: %w", err)}
		}
	}

	if err := purgeFrom(m.store, item); err != nil {
		return &PurgeError{Item: item, Err: err}
	}

	m.logger.Info("purged from trash", slog.String("item", item))

	return nil
}

// purgePeer removes item from the peer. When the delete has not reached
// the peer yet, its live copy is trashed first so it cannot be pulled
// back, unless a live copy also exists locally.
func (m *Manager) purgePeer(item string) error {
	trashed, err := m.peer.Exists(item)
	if err != nil {
		return err
	}

	if !trashed {
		live := docstore.StripTrashPrefix(item)

		peerLive, err := m.peer.Exists(live)
		if err != nil {
			return err
		}

		localLive, err := m.store.Exists(live)
		if err != nil {
			return err
		}

		if !peerLive || localLive {
			return nil
		}

		if err := m.peer.Rename(live, item); err != nil {
			return err
		}
	}

	return purgeFrom(m.peer, item)
}

// purgeFrom removes a trashed item from store, plus its children folder
// for a document unless a live document of the same name owns it.
func purgeFrom(store *docstore.Store, item string) error {
	if err := store.RemoveAll(item); err != nil {
		return err
	}

	if !docstore.IsDocument(item) {
		return nil
	}

	live, err := store.Exists(docstore.StripTrashPrefix(item))
	if err != nil {
		return err
	}

	if live {
		return nil
	}

	children := docstore.ChildrenDir(item)
	if err := store.RemoveAll(children); err != nil {
		return fmt.Errorf("removing children folder %s: %w", children, err)
	}

	return nil
}

// PurgeAll purges items one at a time in the given order and returns the
// errors of the items that failed. With stopOnError it stops at the first
// failure, so the items before it are exactly the ones purged. A cancelled
// context stops the run and its error is the last one returned.
func (m *Manager) PurgeAll(ctx context.Context, items []string, stopOnError bool) []error {
	var errs []error

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return append(errs, err)
		}

		if err := m.Purge(item); err != nil {
			m.logger.Warn("purge failed", slog.String("item", item), slog.String("error", err.Error()))

			errs = append(errs, err)
			if stopOnError {
				return errs
			}
		}
	}

	return errs
}

// List returns every trashed item in the store, sorted by path.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	paths, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []Entry

	for _, p := range paths {
		if !docstore.IsTrashed(p) {
			continue
		}

		at, err := m.store.ChangeTime(p)
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{Path: p, Name: docstore.DisplayName(p), TrashedAt: at})
	}

	return out, nil
}

// Empty purges everything in the trash. Individual failures do not stop
// the remaining purges; they are joined into the returned error. With a
// peer, trash entries only the peer holds are purged too.
func (m *Manager) Empty(ctx context.Context) error {
	errs := emptyAll(ctx, m)

	if m.peer != nil {
		errs = append(errs, emptyAll(ctx, NewManager(m.peer, m.logger))...)
	}

	return errors.Join(errs...)
}

func emptyAll(ctx context.Context, m *Manager) []error {
	entries, err := m.List(ctx)
	if err != nil {
		return []error{err}
	}

	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Path)
	}

	return m.PurgeAll(ctx, items, false)
}

// Remove is the user-facing delete action: a live item goes to the trash,
// an item already in the trash is purged. It returns the item's new path,
// or "" once purged.
func (m *Manager) Remove(item string) (string, error) {
	if docstore.IsTrashed(item) {
		return "", m.Purge(item)
	}

	return m.Delete(item)
}
