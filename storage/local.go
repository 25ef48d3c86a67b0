package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ravent/agentic-api/util"

	"go.uber.org/zap"
)

// Local stores blobs as plain files under a media root directory.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root, %w", err)
	}

	return &Local{root: root}, nil
}

// resolve keeps storage paths inside the media root. Paths are
// server-generated so a traversal here means a bug, not user input
func (l *Local) resolve(path string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))

	if !strings.HasPrefix(full, filepath.Clean(l.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage path %q escapes media root", path)
	}

	return full, nil
}

// Save writes to a temp file first and renames it into place so a
// failed write never leaves a half-written blob behind
func (l *Local) Save(ctx context.Context, path string, content io.ReadSeeker, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := l.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory, %w", err)
	}

	tmp := filepath.Join(l.root, "tmp-"+util.RandKey(8))

	t, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file, %w", err)
	}

	written, err := io.Copy(t, content)
	if cerr := t.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write blob, %w", err)
	}

	if size >= 0 && written != size {
		os.Remove(tmp)
		return fmt.Errorf("short write, got %d bytes, want %d", written, size)
	}

	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move blob into place, %w", err)
	}

	zap.L().Debug("Blob saved", zap.String("path", path), zap.Int64("size", written))
	return nil
}

func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	full, err := l.resolve(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat blob, %w", err)
	}

	return true, nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := l.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	return nil
}
