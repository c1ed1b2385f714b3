// Package disk lays uploaded files out under a date-bucketed directory tree.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docarchive/internal/shared/util"
)

const fallbackName = "upload"

// Store writes upload files beneath root as
// <YYYY>/<Month_YYYY>/<M-D-YYYY>/<yyyyMMddHHmmssfff>_<uuid>_<name>.
type Store struct {
	root string
	now  func() time.Time
}

// New creates a store rooted at root.
func New(root string) *Store {
	return &Store{root: root, now: time.Now}
}

// Root returns the base directory.
func (s *Store) Root() string { return s.root }

// Allocate creates the day bucket for now and returns a fresh, unused path in it.
// Concurrent callers landing in the same bucket both succeed.
func (s *Store) Allocate(fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		name = fallbackName
	}

	now := s.now()
	dir := filepath.Join(s.root, BucketDir(now))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	stamp := now.Format("20060102150405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s", stamp, uuid.NewString(), name)), nil
}

// Write replaces the contents of path with data.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.contains(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// Read returns the contents of path.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.contains(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove deletes path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) contains(path string) error {
	rel, err := filepath.Rel(filepath.Clean(s.root), filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("invalid storage path")
	}
	return nil
}

// BucketDir returns the relative day bucket for t, e.g. 2024/March_2024/3-7-2024.
func BucketDir(t time.Time) string {
	return filepath.Join(
		t.Format("2006"),
		t.Format("January_2006"),
		fmt.Sprintf("%d-%d-%d", int(t.Month()), t.Day(), t.Year()),
	)
}
