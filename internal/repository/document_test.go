package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/syntheses-api/internal/models"
)

func newRecordRepo(t *testing.T) *RecordRepository {
	t.Helper()
	return NewRecordRepository(filepath.Join(t.TempDir(), "fichiers.json"), nil)
}

func record(id int64, title string) models.Record {
	return models.Record{ID: id, Kind: models.KindPDF, Title: title}
}

func TestNextID(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)
	assert.Equal(t, int64(1), repo.NextID(ctx), "absent store")

	require.NoError(t, repo.SaveAll(ctx, []models.Record{}))
	assert.Equal(t, int64(1), repo.NextID(ctx), "empty store")

	require.NoError(t, repo.SaveAll(ctx, []models.Record{record(1, "a"), record(3, "b"), record(5, "c")}))
	assert.Equal(t, int64(6), repo.NextID(ctx))
}

func TestNextIDOnCorruptStoreIsOne(t *testing.T) {
	repo := newRecordRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o644))
	assert.Equal(t, int64(1), repo.NextID(context.Background()))
}

func TestCorruptStoreIsAnError(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("[{\"id\":1,"), 0o644))

	_, err := repo.LoadAll(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = repo.Prepend(ctx, func(id int64) models.Record { return record(id, "x") })
	assert.ErrorIs(t, err, ErrCorrupt)

	data, readErr := os.ReadFile(repo.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "[{\"id\":1,", string(data), "corrupt document must not be overwritten")
}

func TestPrependKeepsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Prepend(ctx, func(id int64) models.Record { return record(id, title) })
		require.NoError(t, err)
	}

	items, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "third", items[0].Title)
}

func TestMutateErrorLeavesDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)
	require.NoError(t, repo.SaveAll(ctx, []models.Record{record(1, "a")}))

	boom := errors.New("boom")
	err := repo.Mutate(ctx, func(items []models.Record) ([]models.Record, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestConcurrentPrependLosesNothing(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Prepend(ctx, func(id int64) models.Record { return record(id, "x") })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, writers)
	seen := make(map[int64]bool, writers)
	for _, item := range items {
		assert.False(t, seen[item.ID], "duplicate id %d", item.ID)
		seen[item.ID] = true
	}
	assert.Equal(t, int64(writers), items[0].ID)
}

func TestDeleteUnknownIDLeavesStore(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)
	require.NoError(t, repo.SaveAll(ctx, []models.Record{record(1, "a")}))
	before, err := os.ReadFile(repo.Path())
	require.NoError(t, err)

	_, err = repo.Delete(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLegacyDocumentLoads(t *testing.T) {
	ctx := context.Background()
	repo := newRecordRepo(t)
	legacy := `[{"id":"7","annee":null,"type":"pdf","path":"/p/a.pdf","nomFichier":"a.pdf","cours":"Algo","titre":"T","nomDiscord":"n","description":"","poidsFichier":10,"dateAjout":"01/01/2024"}]`
	require.NoError(t, os.WriteFile(repo.Path(), []byte(legacy), 0o644))

	items, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID)
	assert.Equal(t, int64(8), repo.NextID(ctx))

	found, err := repo.Find(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "/p/a.pdf", found.StorageLocator)
}

func TestJournalAssignsIDsToLegacyEntries(t *testing.T) {
	ctx := context.Background()
	logs := NewLogRepository(filepath.Join(t.TempDir(), "logs.json"), nil)
	require.NoError(t, os.WriteFile(logs.Path(), []byte(`[{"date":"d1","action":"a"},{"id":4,"date":"d2","action":"b"},{"date":"d3","action":"c"}]`), 0o644))

	items, err := logs.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4, 6}, []int64{items[0].ID, items[1].ID, items[2].ID})

	entry, err := logs.Append(ctx, func(id int64) models.LogEntry { return models.LogEntry{ID: id, Action: "d"} })
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.ID)

	require.NoError(t, logs.Clear(ctx))
	items, err = logs.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestObserverSeesMutations(t *testing.T) {
	var (
		mu    sync.Mutex
		names []string
	)
	chat := NewChatRepository(filepath.Join(t.TempDir(), "chat.json"), func(doc string, err error, d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, doc)
	})
	_, err := chat.Append(context.Background(), func(id int64) models.ChatEntry { return models.ChatEntry{ID: id, Author: "a", Message: "m"} })
	require.NoError(t, err)
	assert.Equal(t, []string{"chat"}, names)
}

func TestMutateNoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	var observed []error
	repo := NewRecordRepository(filepath.Join(t.TempDir(), "fichiers.json"), func(_ string, err error, _ time.Duration) {
		observed = append(observed, err)
	})
	require.NoError(t, repo.SaveAll(ctx, []models.Record{{ID: 1, Kind: models.KindVideo}}))
	before, err := os.ReadFile(repo.Path())
	require.NoError(t, err)

	err = repo.Mutate(ctx, func([]models.Record) ([]models.Record, error) {
		return nil, ErrNoChange
	})
	require.NoError(t, err)

	after, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	require.Len(t, observed, 2)
	assert.NoError(t, observed[1])
}
