package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	apperrors "github.com/alexjbarnes/outline-sync/internal/errors"
)

const (
	// dirPerm is the permission mode for directories created by the store.
	dirPerm = fs.FileMode(0o755)

	// filePerm is the permission mode for files written by the store.
	filePerm = fs.FileMode(0o644)
)

// FS performs whole-tree operations on absolute paths. It is what the
// migration engine uses to move a storage root between locations.
type FS struct{}

// Exists reports whether anything is present at path. Symlinks are not
// followed.
func (FS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// RemoveAll deletes path and everything below it. A missing path is not
// an error.
func (FS) RemoveAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	return nil
}

// MkdirAll creates path and any missing parents.
func (FS) MkdirAll(path string) error {
	return os.MkdirAll(path, dirPerm)
}

// MoveTree moves the tree at src to dst. It fails with
// ErrDestinationExists when dst is already present; callers clear the
// destination first. Within one filesystem this is a single rename. When
// src and dst are on different devices (a mounted cloud drive, say) the
// tree is copied and the source removed afterwards.
func (f FS) MoveTree(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := f.Exists(dst)
	if err != nil {
		return fmt.Errorf("checking destination %s: %w", dst, err)
	}

	if exists {
		return fmt.Errorf("moving to %s: %w", dst, apperrors.ErrDestinationExists)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("creating parent of %s: %w", dst, err)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}

	if err := copyTree(ctx, src, dst); err != nil {
		// Leave the source alone; a partial destination is cleared by the
		// next attempt's delete phase.
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}

	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("removing %s after copy: %w", src, err)
	}

	return nil
}

// copyTree copies regular files and directories from src to dst,
// preserving modification times. Symlinks are skipped.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, dirPerm)
		case d.Type()&fs.ModeSymlink != 0:
			return nil
		case !d.Type().IsRegular():
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if err := copyFile(p, target); err != nil {
			return err
		}

		return os.Chtimes(target, info.ModTime(), info.ModTime())
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: src comes from a walk of a known root
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //nolint:gosec // G304: dst is under a known root
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
