package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideRoot is returned when a name resolves outside the storage root.
var ErrOutsideRoot = errors.New("path escapes storage root")

// LocalStorage persists files on disk under a base directory and maps them
// to the public URL prefix they are served from.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, urlPrefix string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root returns the base directory.
func (s *LocalStorage) Root() string {
	return s.baseDir
}

// Save writes the given bytes to the provided relative path under the base dir.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	target, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return filename, nil
}

// SaveStream copies from reader into the target file and returns the bytes written.
// An existing file is truncated. A partially written file is removed.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) (int64, error) {
	return s.writeStream(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, r)
}

// CreateStream is SaveStream for a name that must not exist yet. A taken name
// fails with an error matching fs.ErrExist and leaves r unread.
func (s *LocalStorage) CreateStream(filename string, r io.Reader) (int64, error) {
	return s.writeStream(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, r)
}

// Reserve creates an empty file under a name that must not exist yet, so a
// later writer owns it. A taken name fails with an error matching fs.ErrExist.
func (s *LocalStorage) Reserve(filename string) error {
	_, err := s.writeStream(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, nil)
	return err
}

func (s *LocalStorage) writeStream(filename string, flag int, r io.Reader) (int64, error) {
	target, err := s.resolve(filename)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("prepare directory: %w", err)
	}
	file, err := os.OpenFile(target, flag, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	var written int64
	if r != nil {
		written, err = io.Copy(file, r)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return 0, fmt.Errorf("write stream: %w", err)
	}
	return written, nil
}

// Size returns the size in bytes of a stored file.
func (s *LocalStorage) Size(filename string) (int64, error) {
	target, err := s.resolve(filename)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	return info.Size(), nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(filename string) error {
	target, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Move renames a stored file, creating the destination directory when needed.
// An existing destination is never replaced: the move fails with an error
// matching fs.ErrExist.
func (s *LocalStorage) Move(from, to string) error {
	src, err := s.resolve(from)
	if err != nil {
		return err
	}
	dst, err := s.resolve(to)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("prepare directory: %w", err)
	}
	// link fails on an existing destination, which rename would silently replace
	if err := os.Link(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("move file: %w", err)
		}
		return s.renameIfAbsent(src, dst)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}

// renameIfAbsent serves filesystems without hard links.
func (s *LocalStorage) renameIfAbsent(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move file: %s: %w", dst, fs.ErrExist)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes files older than the provided TTL and returns deleted names.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			rel = p
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup %s: %w", s.baseDir, err)
	}
	return deleted, nil
}

// Path exposes the absolute path of a stored file.
func (s *LocalStorage) Path(filename string) string {
	target, err := s.resolve(filename)
	if err != nil {
		return ""
	}
	return target
}

// Locator returns the public path a stored file is served from.
func (s *LocalStorage) Locator(filename string) string {
	return s.urlPrefix + "/" + filepath.ToSlash(filepath.Clean(filename))
}

// FromLocator maps a public path back to a name relative to the base dir.
// Percent-encoded locators written by older deployments are accepted.
func (s *LocalStorage) FromLocator(locator string) (string, error) {
	if decoded, err := url.PathUnescape(locator); err == nil {
		locator = decoded
	}
	locator = path.Clean("/" + strings.TrimLeft(locator, "/"))
	prefix := s.urlPrefix + "/"
	if !strings.HasPrefix(locator, prefix) {
		return "", fmt.Errorf("locator %q: %w", locator, ErrOutsideRoot)
	}
	return filepath.FromSlash(strings.TrimPrefix(locator, prefix)), nil
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	clean := filepath.Clean(filename)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", filename, ErrOutsideRoot)
	}
	return filepath.Join(s.baseDir, clean), nil
}
