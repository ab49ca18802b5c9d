// Package diff computes which files have to move between the local and
// the remote copy of a storage root. Presence of a relative path is the
// only signal: no timestamps, no hashes, no history.
package diff

import (
	"sort"

	"github.com/alexjbarnes/outline-sync/internal/docstore"
)

// Set is a set of relative paths keyed by their normalized identity.
// Each key maps to the name as it was added, which is the name to use
// for file I/O on the side the set was listed from.
type Set map[string]string

// NewSet builds a Set from paths.
func NewSet(paths ...string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s.Add(p)
	}

	return s
}

// Add inserts p under its normalized identity. The first name added for
// an identity wins.
func (s Set) Add(p string) {
	key := docstore.NormalizePath(p)
	if _, ok := s[key]; ok {
		return
	}

	s[key] = docstore.SlashPath(p)
}

// Has reports whether an item with the identity of p is in the set.
func (s Set) Has(p string) bool {
	_, ok := s[docstore.NormalizePath(p)]
	return ok
}

// Name returns the name recorded for the identity of p, or p itself when
// the set has no such item.
func (s Set) Name(p string) string {
	if name, ok := s[docstore.NormalizePath(p)]; ok {
		return name
	}

	return p
}

// Sorted returns the identities in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}

// minus returns a \ b, keeping the names recorded in a.
func minus(a, b Set) Set {
	out := make(Set)

	for p, name := range a {
		if _, ok := b[p]; !ok {
			out[p] = name
		}
	}

	return out
}

// PendingPushes returns the paths present locally but not remotely.
// Trashed entries are ordinary names here, so a local delete shows up as
// a push of the renamed trash entry.
func PendingPushes(local, remote Set) Set {
	return minus(local, remote)
}

// PendingPulls returns the paths present remotely but not locally.
func PendingPulls(local, remote Set) Set {
	return minus(remote, local)
}
