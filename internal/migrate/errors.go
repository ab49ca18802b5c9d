package migrate

import (
	"fmt"

	"github.com/alexjbarnes/outline-sync/internal/models"
)

// Phase identifies the step of a migration in which a root failed.
type Phase int

const (
	// PhaseDelete is clearing the destination before the move.
	PhaseDelete Phase = iota
	// PhaseMove is moving the source root into the destination.
	PhaseMove
)

func (p Phase) String() string {
	if p == PhaseDelete {
		return "delete"
	}

	return "move"
}

// RootError reports that one storage root could not be migrated. The
// sync status is left unchanged when it is returned, so the migration
// can be retried.
type RootError struct {
	Root  models.StorageRoot
	Phase Phase
	Err   error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("migrating %s (%s phase): %v", e.Root, e.Phase, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}
