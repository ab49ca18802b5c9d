// Package events carries sync engine notifications to whoever is
// listening. The engine only knows the Sink interface; delivery is up to
// the implementation.
package events

// Event is implemented by every notification the engine emits.
type Event interface {
	isEvent()
}

// Sink receives events. Emit must not block the caller for long and must
// be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

// SyncStarted is emitted when a migration or transfer run begins.
type SyncStarted struct {
	RunID string
	Kind  string // "enable", "disable" or "transfer"
}

func (SyncStarted) isEvent() {}

// SyncProgress is emitted after each item of a transfer run.
type SyncProgress struct {
	Done  int
	Total int
}

func (SyncProgress) isEvent() {}

// SyncCompleted is emitted when a transfer run finishes without errors.
type SyncCompleted struct {
	Pushed  int
	Pulled  int
	Trashed int
}

func (SyncCompleted) isEvent() {}

// SyncFailed is emitted when a migration or transfer run fails.
type SyncFailed struct {
	Err error
}

func (SyncFailed) isEvent() {}

// RemoteEnabled is emitted once the roots are in the remote container.
type RemoteEnabled struct{}

func (RemoteEnabled) isEvent() {}

// RemoteDisabled is emitted once the app is back on local documents.
type RemoteDisabled struct{}

func (RemoteDisabled) isEvent() {}

// AccountAvailabilityChanged is emitted when the remote container flips
// between reachable and unreachable.
type AccountAvailabilityChanged struct {
	Available bool
}

func (AccountAvailabilityChanged) isEvent() {}

// Name returns a short stable name for an event, used in logs.
func Name(e Event) string {
	switch e.(type) {
	case SyncStarted:
		return "sync-started"
	case SyncProgress:
		return "sync-progress"
	case SyncCompleted:
		return "sync-completed"
	case SyncFailed:
		return "sync-failed"
	case RemoteEnabled:
		return "remote-enabled"
	case RemoteDisabled:
		return "remote-disabled"
	case AccountAvailabilityChanged:
		return "account-availability-changed"
	default:
		return "unknown"
	}
}
