package errors

import "errors"

// Remote container errors.
var (
	ErrContainerUnavailable = errors.New("remote container unavailable")
	ErrSyncDisabled         = errors.New("remote sync is not enabled")
)

// Filesystem errors.
var (
	ErrDestinationExists = errors.New("destination already exists")
)

// Trash errors. These are precondition violations: callers should not
// offer the action for items in the wrong state.
var (
	ErrNotTrashed          = errors.New("item is not in the trash")
	ErrAlreadyTrashed      = errors.New("item is already in the trash")
	ErrTrashOccupied       = errors.New("a trashed item with this name already exists")
	ErrRecoverTargetExists = errors.New("a live item with the recovered name already exists")
)
