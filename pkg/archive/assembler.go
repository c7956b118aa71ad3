package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoInput is returned when Assemble is called without sources.
	ErrNoInput = errors.New("no files to assemble")
	// ErrNothingAssembled is returned when none of the sources could be read.
	ErrNothingAssembled = errors.New("no file could be added to the archive")
)

// Source is one file to place in the archive.
type Source struct {
	SourcePath  string
	DisplayName string
}

// Assembler bundles uploaded parts into a single ZIP container.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler builds an Assembler.
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{logger: logger}
}

// Assemble writes every readable source into destination and returns the
// size of the finished archive. Missing sources are skipped. The
// destination is removed on any failure.
func (a *Assembler) Assemble(ctx context.Context, files []Source, destination string) (size int64, err error) {
	if len(files) == 0 {
		return 0, ErrNoInput
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return 0, fmt.Errorf("create archive directory: %w", err)
	}

	out, err := os.Create(destination)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			if rmErr := os.Remove(destination); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				a.logger.Warn("failed to remove partial archive", zap.String("path", destination), zap.Error(rmErr))
			}
		}
	}()

	zw := zip.NewWriter(out)
	names := newNameSet()
	added := 0
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ok, err := a.addEntry(zw, src, names)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}
	if added == 0 {
		return 0, ErrNothingAssembled
	}

	info, err := os.Stat(destination)
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	a.logger.Debug("archive assembled", zap.String("path", destination), zap.Int("entries", added), zap.Int64("size", info.Size()))
	return info.Size(), nil
}

func (a *Assembler) addEntry(zw *zip.Writer, src Source, names *nameSet) (bool, error) {
	f, err := os.Open(src.SourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn("skipping missing archive source", zap.String("path", src.SourcePath))
			return false, nil
		}
		return false, fmt.Errorf("open %s: %w", src.SourcePath, err)
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src.SourcePath, err)
	}
	if info.IsDir() {
		a.logger.Warn("skipping directory archive source", zap.String("path", src.SourcePath))
		return false, nil
	}

	display := src.DisplayName
	if display == "" {
		display = filepath.Base(src.SourcePath)
	}
	header := &zip.FileHeader{
		Name:     names.unique(entryName(display)),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return false, fmt.Errorf("create entry %s: %w", header.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return false, fmt.Errorf("write entry %s: %w", header.Name, err)
	}
	return true, nil
}

// entryName keeps only the base name of a client supplied file name.
func entryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." || name == ".." {
		return "fichier"
	}
	return name
}

type nameSet struct {
	used map[string]int
}

func newNameSet() *nameSet {
	return &nameSet{used: make(map[string]int)}
}

// unique appends " (n)" before the extension of repeated names.
func (s *nameSet) unique(name string) string {
	for {
		n := s.used[name]
		s.used[name] = n + 1
		if n == 0 {
			return name
		}
		ext := path.Ext(name)
		candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
		if _, taken := s.used[candidate]; !taken {
			s.used[candidate] = 1
			return candidate
		}
	}
}
