package diff

import (
	"sort"

	"github.com/alexjbarnes/outline-sync/internal/docstore"
)

// Plan is the set of actions that brings the two sides of a root into
// agreement. Every entry is the name as listed on the side it is read
// or renamed on, so it can be passed straight to the store. The raw pushes and pulls are refined with the trash naming
// convention so that a delete on one side propagates as a delete on the
// other instead of the live copy being pulled back.
type Plan struct {
	// Push lists paths to copy from local to remote.
	Push []string
	// Pull lists paths to copy from remote to local.
	Pull []string
	// TrashRemote lists live paths that were trashed locally; the remote
	// copy is renamed into the trash.
	TrashRemote []string
	// TrashLocal lists live paths that were trashed remotely; the local
	// copy is renamed into the trash.
	TrashLocal []string
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.Push) == 0 && len(p.Pull) == 0 && len(p.TrashRemote) == 0 && len(p.TrashLocal) == 0
}

// Len returns the number of actions in the plan.
func (p Plan) Len() int {
	return len(p.Push) + len(p.Pull) + len(p.TrashRemote) + len(p.TrashLocal)
}

// NewPlan derives a Plan from the two listings. A live path missing on
// one side whose trashed form exists on that side is a delete, not a
// transfer. Without history a recover on one side looks exactly like a
// delete on the other, and the delete wins.
func NewPlan(local, remote Set) Plan {
	pushes := PendingPushes(local, remote)
	pulls := PendingPulls(local, remote)

	var plan Plan

	trashRemote := make(map[string]struct{})
	trashLocal := make(map[string]struct{})

	for p := range pulls {
		if docstore.IsTrashed(p) {
			continue
		}

		// If the remote side also holds the trash entry, the live remote
		// copy was created after that delete and is a genuine new file.
		trashed := docstore.AddTrashPrefix(p)
		if local.Has(trashed) && !remote.Has(trashed) {
			trashRemote[p] = struct{}{}
		}
	}

	for p := range pushes {
		if docstore.IsTrashed(p) {
			continue
		}

		trashed := docstore.AddTrashPrefix(p)
		if remote.Has(trashed) && !local.Has(trashed) {
			trashLocal[p] = struct{}{}
		}
	}

	for _, p := range pushes.Sorted() {
		if _, ok := trashLocal[p]; ok {
			continue
		}

		// The trash entry arrives on the remote side via the rename.
		if docstore.IsTrashed(p) {
			if _, ok := trashRemote[docstore.StripTrashPrefix(p)]; ok {
				continue
			}
		}

		plan.Push = append(plan.Push, local.Name(p))
	}

	for _, p := range pulls.Sorted() {
		if _, ok := trashRemote[p]; ok {
			continue
		}

		if docstore.IsTrashed(p) {
			if _, ok := trashLocal[docstore.StripTrashPrefix(p)]; ok {
				continue
			}
		}

		plan.Pull = append(plan.Pull, remote.Name(p))
	}

	plan.TrashRemote = names(trashRemote, remote)
	plan.TrashLocal = names(trashLocal, local)

	return plan
}

// names returns the recorded names of keys in side, ordered by identity.
func names(keys map[string]struct{}, side Set) []string {
	if len(keys) == 0 {
		return nil
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}

	sort.Strings(sorted)

	out := make([]string, len(sorted))
	for i, k := range sorted {
		out[i] = side.Name(k)
	}

	return out
}
