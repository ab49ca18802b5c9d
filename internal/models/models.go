// Package models defines types shared across internal packages.
package models

import "fmt"

// SyncStatus is the persisted remote sync enablement state.
type SyncStatus string

const (
	// StatusNeverUsed means remote sync has never been enabled on this
	// device. It is the value read when nothing has been stored yet.
	StatusNeverUsed SyncStatus = "never-used"

	// StatusOn means all three roots live in the remote container.
	StatusOn SyncStatus = "on"

	// StatusOffWithOldData means sync was on but the remote account went
	// away. The documents are still in the (now unreachable) container.
	StatusOffWithOldData SyncStatus = "off-with-old-data"

	// StatusOff means the user explicitly disabled remote sync after
	// having used it, and the roots were moved back to local storage.
	StatusOff SyncStatus = "off"
)

// ParseSyncStatus converts a stored string back into a SyncStatus.
func ParseSyncStatus(s string) (SyncStatus, error) {
	switch st := SyncStatus(s); st {
	case StatusNeverUsed, StatusOn, StatusOffWithOldData, StatusOff:
		return st, nil
	default:
		return "", fmt.Errorf("unknown sync status %q", s)
	}
}

func (s SyncStatus) String() string {
	return string(s)
}

// StorageRoot identifies one of the three top-level folders that are
// migrated together as a unit.
type StorageRoot int

const (
	RootDocuments StorageRoot = iota
	RootAttachments
	RootKeyValueStore
)

// AllRoots lists every storage root in migration order.
var AllRoots = []StorageRoot{RootDocuments, RootAttachments, RootKeyValueStore}

// DirName returns the on-disk folder name of the root. These names are
// shared with existing data and must not change.
func (r StorageRoot) DirName() string {
	switch r {
	case RootDocuments:
		return "Documents"
	case RootAttachments:
		return "Attachments"
	case RootKeyValueStore:
		return "KeyValueStore"
	default:
		return fmt.Sprintf("Root%d", int(r))
	}
}

func (r StorageRoot) String() string {
	return r.DirName()
}

// ParseStorageRoot accepts a root's folder name, case-insensitively
// for the common short forms used on the command line.
func ParseStorageRoot(s string) (StorageRoot, error) {
	switch s {
	case "Documents", "documents", "docs":
		return RootDocuments, nil
	case "Attachments", "attachments":
		return RootAttachments, nil
	case "KeyValueStore", "keyvaluestore", "kv":
		return RootKeyValueStore, nil
	default:
		return 0, fmt.Errorf("unknown storage root %q", s)
	}
}

// Location says which backend a root path lives in.
type Location int

const (
	LocationLocal Location = iota
	LocationRemote
)

func (l Location) String() string {
	if l == LocationRemote {
		return "remote"
	}

	return "local"
}
