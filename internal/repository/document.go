package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/noah-isme/syntheses-api/internal/models"
)

// ErrNotFound is returned when no entry carries the requested id.
var ErrNotFound = errors.New("entry not found")

// ErrCorrupt is wrapped by load errors on undecodable documents.
var ErrCorrupt = errors.New("document is not valid JSON")

// ErrNoChange lets a mutation report that the document already holds the
// wanted state. Mutate then returns nil without writing.
var ErrNoChange = errors.New("document unchanged")

// MutationObserver receives the duration and outcome of every mutation.
type MutationObserver func(document string, err error, duration time.Duration)

// Document is a JSON array persisted in a single file. Every mutation goes
// through one mutex so concurrent read-modify-write cycles never interleave.
type Document[T models.Identified[T]] struct {
	name     string
	path     string
	observer MutationObserver

	mu sync.RWMutex
}

// NewDocument binds a document to path. The parent directory is created on first save.
func NewDocument[T models.Identified[T]](name, path string, observer MutationObserver) *Document[T] {
	return &Document[T]{name: name, path: path, observer: observer}
}

// Path returns the backing file.
func (d *Document[T]) Path() string {
	return d.path
}

// LoadAll returns every entry in document order. A missing file is empty.
func (d *Document[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.load()
}

// Mutate loads the document, applies fn and saves its result, all under the
// write lock. Nothing is written when fn fails or returns ErrNoChange.
func (d *Document[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		if d.observer != nil {
			d.observer(d.name, err, time.Since(start))
		}
	}()

	d.mu.Lock()
	defer d.mu.Unlock()

	items, err := d.load()
	if err != nil {
		return err
	}
	next, err := fn(items)
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	return d.save(next)
}

// Append stores the entry built for the next id at the end of the document.
func (d *Document[T]) Append(ctx context.Context, build func(id int64) T) (T, error) {
	var created T
	err := d.Mutate(ctx, func(items []T) ([]T, error) {
		created = build(NextID(items))
		return append(items, created), nil
	})
	return created, err
}

// Prepend stores the entry built for the next id at the head of the document.
func (d *Document[T]) Prepend(ctx context.Context, build func(id int64) T) (T, error) {
	var created T
	err := d.Mutate(ctx, func(items []T) ([]T, error) {
		created = build(NextID(items))
		out := make([]T, 0, len(items)+1)
		out = append(out, created)
		return append(out, items...), nil
	})
	return created, err
}

// Find returns the entry with the given id.
func (d *Document[T]) Find(ctx context.Context, id int64) (T, error) {
	var zero T
	items, err := d.LoadAll(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return zero, ErrNotFound
}

// Delete removes the entry with the given id.
func (d *Document[T]) Delete(ctx context.Context, id int64) (T, error) {
	var removed T
	err := d.Mutate(ctx, func(items []T) ([]T, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		removed = items[i]
		return append(items[:i:i], items[i+1:]...), nil
	})
	return removed, err
}

// Clear empties the document.
func (d *Document[T]) Clear(ctx context.Context) error {
	return d.Mutate(ctx, func([]T) ([]T, error) {
		return []T{}, nil
	})
}

// NextID returns max(id)+1, or 1 for an empty document.
func NextID[T models.Identified[T]](items []T) int64 {
	var max int64
	for _, item := range items {
		if id := item.EntryID(); id > max {
			max = id
		}
	}
	return max + 1
}

func indexOf[T models.Identified[T]](items []T, id int64) int {
	for i, item := range items {
		if item.EntryID() == id {
			return i
		}
	}
	return -1
}

func (d *Document[T]) load() ([]T, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", d.name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := sonic.ConfigStd.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", d.name, ErrCorrupt, err)
	}
	if items == nil {
		items = []T{}
	}
	return assignMissingIDs(items), nil
}

// assignMissingIDs numbers legacy entries stored without an id, in order.
func assignMissingIDs[T models.Identified[T]](items []T) []T {
	next := NextID(items)
	for i, item := range items {
		if item.EntryID() <= 0 {
			items[i] = item.WithID(next)
			next++
		}
	}
	return items
}

func (d *Document[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.name, err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare %s directory: %w", d.name, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", d.name, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", d.name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", d.name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", d.name, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", d.name, err)
	}
	return nil
}
