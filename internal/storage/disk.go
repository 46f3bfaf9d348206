// Package storage materializes the catalog on the local filesystem. The
// tree is rooted at a fixed upload directory, namespaced first by owner
// identifier (email) and then by folder path:
//
//	<root>/<owner-email>/<folder-path>/<stored-filename>
//
// The catalogs and the tree must not diverge for long: every mutating
// service operation updates both or rolls back.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// DiskStore performs physical directory and blob lifecycle operations
type DiskStore struct {
	root   string
	logger *slog.Logger
}

// NewDiskStore creates a disk store rooted at the upload directory
func NewDiskStore(root string, logger *slog.Logger) *DiskStore {
	return &DiskStore{
		root:   filepath.Clean(root),
		logger: logger,
	}
}

// Root returns the upload root directory
func (s *DiskStore) Root() string {
	return s.root
}

// OwnerRoot returns the owner's namespace directory
func (s *DiskStore) OwnerRoot(ownerEmail string) string {
	return filepath.Join(s.root, ownerEmail)
}

// FolderDir returns the physical directory for a folder path
func (s *DiskStore) FolderDir(ownerEmail, folderPath string) string {
	return filepath.Join(s.root, ownerEmail, filepath.FromSlash(folderPath))
}

// BlobPath returns the physical location of a stored file
func (s *DiskStore) BlobPath(ownerEmail, folderPath, filename string) string {
	return filepath.Join(s.FolderDir(ownerEmail, folderPath), filename)
}

// EnsureDir idempotently creates the folder's directory chain. Succeeds
// if the directory already exists.
func (s *DiskStore) EnsureDir(ownerEmail, folderPath string) (string, error) {
	dir := s.FolderDir(ownerEmail, folderPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	return dir, nil
}

// Exists reports whether a file of the given name exists in the directory
func (s *DiskStore) Exists(dir, filename string) bool {
	_, err := os.Stat(filepath.Join(dir, filename))
	return err == nil
}

// WriteBlob writes file content under a name the caller has already
// guaranteed to be free. A pre-existing file at the exact path is a logic
// error and fails loudly (fs.ErrExist) instead of silently overwriting.
func (s *DiskStore) WriteBlob(dir, filename string, content io.Reader) (string, error) {
	path := filepath.Join(dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("write blob %s: %w", path, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob %s: %w", path, err)
	}

	return path, nil
}

// RemoveBlob deletes a single file. A blob that is already absent is
// logged and tolerated: the catalog row is going away regardless.
func (s *DiskStore) RemoveBlob(path string) error {
	err := os.Remove(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("blob already absent", "path", path)
		return nil
	}
	return fmt.Errorf("remove blob %s: %w", path, err)
}

// RemoveTree deletes the folder's directory recursively, then walks
// upward removing each now-empty ancestor, stopping at the owner's root
// or the first non-empty directory. Keeps the tree tidy after deleting
// deeply nested folder chains.
func (s *DiskStore) RemoveTree(ownerEmail, folderPath string) error {
	dir := s.FolderDir(ownerEmail, folderPath)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove tree %s: %w", dir, err)
	}

	ownerRoot := filepath.Clean(s.OwnerRoot(ownerEmail))
	for parent := filepath.Dir(dir); parent != ownerRoot && len(parent) > len(ownerRoot); parent = filepath.Dir(parent) {
		entries, err := os.ReadDir(parent)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("prune %s: %w", parent, err)
		}
		if len(entries) > 0 {
			break
		}
		if err := os.Remove(parent); err != nil {
			return fmt.Errorf("prune %s: %w", parent, err)
		}
		s.logger.Debug("pruned empty directory", "path", parent)
	}

	return nil
}
