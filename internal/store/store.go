// Package store provides the local file store the resolver acts on: a
// directory tree exposed as list/read/write/delete/rename operations on
// slash-separated relative paths. All access is traversal-guarded and
// serialized so a resolution sequence never races a concurrent read.
package store

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	// storeDirPerm is the permission mode for directories created
	// inside the store.
	storeDirPerm = fs.FileMode(0o755)

	// storeFilePerm is the permission mode for files written inside
	// the store.
	storeFilePerm = fs.FileMode(0o644)
)

// FileRef identifies a stored file. It is an immutable snapshot:
// re-fetched via ListFiles or Stat, never mutated in place.
type FileRef struct {
	// Path is the slash-separated path relative to the store root.
	Path string
	// Name is the base name of the file.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the last modification time.
	ModTime time.Time
}

// Store provides thread-safe filesystem operations on a rooted
// directory. Writes take an exclusive lock; reads take a shared lock
// so they never observe a partial write.
type Store struct {
	dir    string
	ignore []string
	mu     sync.RWMutex
}

// New creates a Store rooted at dir, creating it if it does not exist.
// The optional ignore globs exclude matching relative paths from
// ListFiles on top of the built-in skip rules.
func New(dir string, ignore []string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory must not be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving store directory: %w", err)
	}

	if err := os.MkdirAll(abs, storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", abs, err)
	}

	return &Store{dir: abs, ignore: ignore}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// skip reports whether a directory entry is excluded from listings:
// hidden files and directories (which covers the daemon's own .stfolder
// and .stversions markers), daemon temp files, and user ignore globs.
func (s *Store) skip(relPath string, d os.DirEntry) bool {
	base := d.Name()

	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasPrefix(base, "~syncthing~") && strings.HasSuffix(base, ".tmp") {
		return true
	}

	for _, pattern := range s.ignore {
		if ok, _ := path.Match(pattern, relPath); ok {
			return true
		}

		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}

	return false
}

// ListFiles walks the store and returns a snapshot of every regular
// file as a FileRef, ordered by path. Hidden entries, daemon artifacts,
// and ignore-glob matches are skipped.
func (s *Store) ListFiles() ([]FileRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []FileRef

	err := filepath.WalkDir(s.dir, func(absPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(s.dir, absPath)
		if err != nil {
			return err
		}

		if relPath == "." {
			return nil
		}

		relPath = NormalizePath(relPath)

		if s.skip(relPath, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		// Symlinks are not followed; a link could point at files
		// outside the store or at special files that hang on read.
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // entry vanished mid-walk, skip it
		}

		files = append(files, FileRef{
			Path:    relPath,
			Name:    path.Base(relPath),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking store directory: %w", err)
	}

	return files, nil
}

// ReadFile reads a file by relative path.
func (s *Store) ReadFile(relPath string) ([]byte, error) {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return os.ReadFile(absPath) //nolint:gosec // G304: absPath validated by Store.resolve
}

// WriteFile writes content to a file by relative path, creating parent
// directories as needed.
func (s *Store) WriteFile(relPath string, data []byte) error {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(absPath), storeDirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", relPath, err)
	}

	return os.WriteFile(absPath, data, storeFilePerm)
}

// DeleteFile removes a file by relative path. Deleting a file that
// does not exist is an error: the resolver's delete-then-rename
// sequence must know whether the delete actually happened.
func (s *Store) DeleteFile(relPath string) error {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("removing %s: %w", relPath, err)
	}

	return nil
}

// Rename moves a file from one relative path to another within the
// store, creating the destination's parent directory as needed.
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

	if err := os.MkdirAll(filepath.Dir(newAbs), storeDirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", newRel, err)
	}

	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldRel, newRel, err)
	}

	return nil
}

// Stat returns a FileRef snapshot for a relative path.
func (s *Store) Stat(relPath string) (FileRef, error) {
	absPath, err := s.resolve(relPath)
	if err != nil {
		return FileRef{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(absPath)
	if err != nil {
		return FileRef{}, err
	}

	relPath = NormalizePath(relPath)

	return FileRef{
		Path:    relPath,
		Name:    path.Base(relPath),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// resolve converts a relative path to an absolute path within the
// store directory, rejecting traversal attempts: null bytes, ".."
// segments, and absolute inputs.
func (s *Store) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.ContainsRune(relPath, 0) {
		return "", fmt.Errorf("path contains null byte: %q", relPath)
	}

	relPath = NormalizePath(relPath)

	for _, seg := range strings.Split(relPath, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path contains ..: %q", relPath)
		}
	}

	absPath := filepath.Join(s.dir, filepath.FromSlash(relPath))
	if absPath != s.dir && !strings.HasPrefix(absPath, s.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal blocked: %q resolves outside store", relPath)
	}

	return absPath, nil
}

// NormalizePath normalizes a store-relative path: OS-native separators
// become forward slashes, non-breaking spaces become regular spaces,
// repeated slashes collapse, leading/trailing slashes are trimmed, and
// Unicode NFC normalization is applied. Every path entering the system
// goes through this: listings, watcher events, and user input.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ReplaceAll(p, " ", " ")
	p = strings.ReplaceAll(p, " ", " ")

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

	p = strings.Trim(b.String(), "/")

	return norm.NFC.String(p)
}
