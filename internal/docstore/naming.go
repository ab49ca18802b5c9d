package docstore

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// TrashPrefix marks a soft-deleted entry. It is part of the on-disk
	// format shared with existing data.
	TrashPrefix = ".deleted_"

	// DocumentExt is the extension of application documents.
	DocumentExt = ".doc"

	// ChildrenSuffix is appended to a document's base name to form the
	// folder holding its nested child documents.
	ChildrenSuffix = "__"

	// tempPrefix marks in-flight copies. Listings skip them.
	tempPrefix = ".outline-sync-tmp-"
)

// IsTrashed reports whether the last component of rel carries the trash
// prefix.
func IsTrashed(rel string) bool {
	return strings.HasPrefix(path.Base(SlashPath(rel)), TrashPrefix)
}

// AddTrashPrefix prefixes the last component of rel with TrashPrefix. An
// already trashed path is returned unchanged, so the prefix is never
// applied twice.
func AddTrashPrefix(rel string) string {
	rel = SlashPath(rel)
	if rel == "" || IsTrashed(rel) {
		return rel
	}

	dir, base := path.Split(rel)

	return dir + TrashPrefix + base
}

// StripTrashPrefix removes TrashPrefix from the last component of rel.
// A live path is returned unchanged.
func StripTrashPrefix(rel string) string {
	rel = SlashPath(rel)
	if !IsTrashed(rel) {
		return rel
	}

	dir, base := path.Split(rel)

	return dir + strings.TrimPrefix(base, TrashPrefix)
}

// DisplayName returns the user-facing name of an entry: the last
// component without the trash prefix, extension kept.
func DisplayName(rel string) string {
	return path.Base(StripTrashPrefix(rel))
}

// IsDocument reports whether rel names an application document, trashed
// or not.
func IsDocument(rel string) bool {
	return path.Ext(SlashPath(rel)) == DocumentExt
}

// IsTemp reports whether the file name base belongs to an in-flight copy.
func IsTemp(base string) bool {
	return strings.HasPrefix(base, tempPrefix)
}

// ChildrenDir returns the folder that holds the nested children of the
// document at rel: "a.doc" maps to "a__" and "a__/b.doc" to "a__/b__".
// The trash prefix is ignored so a trashed document maps to the same
// folder as its live form.
func ChildrenDir(rel string) string {
	rel = StripTrashPrefix(rel)
	base := strings.TrimSuffix(path.Base(rel), DocumentExt)

	dir := path.Dir(rel)
	if dir == "." {
		return base + ChildrenSuffix
	}

	return dir + "/" + base + ChildrenSuffix
}

// ChildPath returns the path a new child document named name would have
// under parentRel.
func ChildPath(parentRel, name string) string {
	if !strings.HasSuffix(name, DocumentExt) {
		name += DocumentExt
	}

	return ChildrenDir(parentRel) + "/" + name
}

// SlashPath converts OS-native separators to forward slashes, collapses
// repeated slashes and trims leading/trailing slashes. The characters of
// each name are left alone, so the result still names the file on disk.
func SlashPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")

	var b strings.Builder

	prevSlash := false

	for _, r := range p {
		if r == '/' {
			if prevSlash {
				continue
			}

			prevSlash = true
		} else {
			prevSlash = false
		}

		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "/")
}

// NormalizePath returns the identity of a root-relative path: SlashPath
// plus non-breaking spaces replaced with regular spaces and Unicode NFC
// normalization. Two names with the same identity are the same item on
// both sides of a comparison. The result is a comparison key only; file
// I/O uses the name as listed.
func NormalizePath(p string) string {
	p = SlashPath(p)
	p = strings.ReplaceAll(p, "\u00A0", " ")
	p = strings.ReplaceAll(p, "\u202F", " ")

	return norm.NFC.String(p)
}
