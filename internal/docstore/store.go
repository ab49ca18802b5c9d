package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/alexjbarnes/outline-sync/internal/errors"
)

// Store provides thread-safe filesystem operations on one storage root
// (documents, attachments or key-value store) in one location. Paths are
// relative to the root. Writes are serialized by an exclusive lock and
// reads take a shared lock, but no lock is held between calls.
//
// The root directory does not need to exist: listing a missing root
// yields nothing, and writes create it on demand.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store rooted at dir, which must be an absolute path.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory must not be empty")
	}

	if !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("store directory must be absolute: %q", dir)
	}

	return &Store{dir: filepath.Clean(dir)}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// List walks the root and returns the slash-separated relative path of
// every regular file as named on disk, sorted. Folders are implied by the files inside them.
// Symlinks and in-flight temp files are skipped. A missing root lists as
// empty.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string

	err := filepath.WalkDir(s.dir, func(absPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if absPath == s.dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}

			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}

		if IsTemp(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(s.dir, absPath)
		if err != nil {
			return err
		}

		out = append(out, SlashPath(filepath.ToSlash(rel)))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	sort.Strings(out)

	return out, nil
}

// Exists reports whether rel is present in the store.
func (s *Store) Exists(rel string) (bool, error) {
	absPath, err := s.resolve(rel)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return FS{}.Exists(absPath)
}

// ChangeTime returns the inode change time of rel, or the zero time
// where the platform does not expose it.
func (s *Store) ChangeTime(rel string) (time.Time, error) {
	absPath, err := s.resolve(rel)
	if err != nil {
		return time.Time{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Lstat(absPath)
	if err != nil {
		return time.Time{}, err
	}

	return changeTime(info), nil
}

// ReadFile reads a file by relative path.
func (s *Store) ReadFile(rel string) ([]byte, error) {
	absPath, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return os.ReadFile(absPath) //nolint:gosec // G304: absPath validated by Store.resolve
}

// WriteFile writes content to a file by relative path, creating parent
// directories as needed.
func (s *Store) WriteFile(rel string, data []byte) error {
	absPath, err := s.resolve(rel)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(absPath), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	return os.WriteFile(absPath, data, filePerm)
}

// MkdirAll creates a directory (and parents) by relative path.
func (s *Store) MkdirAll(rel string) error {
	absPath, err := s.resolve(rel)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return os.MkdirAll(absPath, dirPerm)
}

// Rename moves an entry from one relative path to another with a single
// rename, so the entry is never absent from both names. It refuses to
// overwrite: an existing destination yields ErrDestinationExists.
func (s *Store) Rename(oldRel, newRel string) error {
	oldAbs, err := s.resolve(oldRel)
	if err != nil {
		return err
	}

	newAbs, err := s.resolve(newRel)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := FS{}.Exists(newAbs)
	if err != nil {
		return fmt.Errorf("checking %s: %w", newRel, err)
	}

	if exists {
		return fmt.Errorf("renaming %s to %s: %w", oldRel, newRel, apperrors.ErrDestinationExists)
	}

	if err := os.MkdirAll(filepath.Dir(newAbs), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", newRel, err)
	}

	return os.Rename(oldAbs, newAbs)
}

// Remove deletes a single file or empty directory. Unlike RemoveAll, a
// missing entry is an error.
func (s *Store) Remove(rel string) error {
	absPath, err := s.resolve(rel)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("removing %s: %w", rel, err)
	}

	return nil
}

// RemoveAll removes a directory and all its contents by relative path.
// Returns nil if it does not exist.
func (s *Store) RemoveAll(rel string) error {
	absPath, err := s.resolve(rel)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(absPath); err != nil {
		return fmt.Errorf("removing directory %s: %w", rel, err)
	}

	return nil
}

// CopyFrom copies rel from src into this store at the same relative
// path, preserving the modification time. The content is staged in a
// temp file next to the destination and renamed into place, so readers
// never see a partial file. Only one store lock is held at a time.
func (s *Store) CopyFrom(ctx context.Context, src *Store, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	srcAbs, err := src.resolve(rel)
	if err != nil {
		return err
	}

	dstAbs, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	tmp, info, err := src.stage(srcAbs, filepath.Dir(dstAbs))
	if err != nil {
		return fmt.Errorf("copying %s: %w", rel, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("setting mtime for %s: %w", rel, err)
	}

	if err := os.Rename(tmp, dstAbs); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("placing %s: %w", rel, err)
	}

	return nil
}

// stage copies srcAbs into a new temp file in dir under the source
// store's read lock.
func (s *Store) stage(srcAbs, dir string) (string, os.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in, err := os.Open(srcAbs) //nolint:gosec // G304: srcAbs validated by Store.resolve
	if err != nil {
		return "", nil, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", nil, err
	}

	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", srcAbs)
	}

	out, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", nil, err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())

		return "", nil, err
	}

	if err := out.Chmod(filePerm); err != nil {
		out.Close()
		os.Remove(out.Name())

		return "", nil, err
	}

	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", nil, err
	}

	return out.Name(), info, nil
}

// resolve converts a relative path to an absolute path within the store
// root, rejecting path traversal attempts: null bytes, ".." segments,
// and symlinks that escape the root.
func (s *Store) resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("path contains null byte: %q", rel)
	}

	rel = strings.ReplaceAll(rel, "\\", "/")

	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path contains ..: %q", rel)
		}
	}

	absPath := filepath.Join(s.dir, rel)
	if !strings.HasPrefix(absPath, s.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal blocked: %q resolves outside store dir", rel)
	}

	// The root itself may not exist yet, in which case nothing below it
	// can be a symlink.
	rootReal, err := filepath.EvalSymlinks(s.dir)
	if err != nil {
		return absPath, nil //nolint:nilerr // root will be created on first write
	}

	parentReal, err := filepath.EvalSymlinks(filepath.Dir(absPath))
	if err != nil {
		return absPath, nil //nolint:nilerr // parent will be created by MkdirAll
	}

	if parentReal != rootReal && !strings.HasPrefix(parentReal, rootReal+string(os.PathSeparator)) {
		return "", fmt.Errorf("symlink traversal blocked: parent of %q resolves to %q outside store", rel, parentReal)
	}

	return absPath, nil
}
