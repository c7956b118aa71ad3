package storage

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "/Les synthèses des invités/")
	require.NoError(t, err)
	return s
}

func TestSaveStreamReportsSize(t *testing.T) {
	s := newTestStorage(t)

	n, err := s.SaveStream(filepath.Join("Algo", "notes.pdf"), bytes.NewReader([]byte("%PDF-1.4 body")))
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	size, err := s.Size(filepath.Join("Algo", "notes.pdf"))
	require.NoError(t, err)
	assert.Equal(t, n, size)
}

func TestResolveRejectsEscape(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Save("../outside.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestMoveCreatesDirectories(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Save("Algo/a.pdf", []byte("a"))
	require.NoError(t, err)

	require.NoError(t, s.Move("Algo/a.pdf", "Annee_2/Algo/b.pdf"))
	_, err = os.Stat(s.Path("Annee_2/Algo/b.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(s.Path("Algo/a.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingIsFine(t *testing.T) {
	s := newTestStorage(t)
	assert.NoError(t, s.Delete("nope.pdf"))
}

func TestLocatorRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	loc := s.Locator(filepath.Join("Annee_1", "Algo", "x.pdf"))
	assert.Equal(t, "/Les synthèses des invités/Annee_1/Algo/x.pdf", loc)

	rel, err := s.FromLocator(loc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Annee_1", "Algo", "x.pdf"), rel)

	rel, err = s.FromLocator("/Les%20synth%C3%A8ses%20des%20invit%C3%A9s/Algo/y.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Algo", "y.pdf"), rel)

	_, err = s.FromLocator("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
	_, err = s.FromLocator("/Les synthèses des invités/../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestCleanupOlderThan(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Save("old.part", []byte("old"))
	require.NoError(t, err)
	_, err = s.Save("fresh.part", []byte("fresh"))
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(s.Path("old.part"), past, past))

	deleted, err := s.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.part"}, deleted)
	_, err = os.Stat(s.Path("fresh.part"))
	assert.NoError(t, err)
}

func TestCreateStreamRefusesTakenName(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Save("Algo/a.pdf", []byte("first"))
	require.NoError(t, err)

	_, err = s.CreateStream("Algo/a.pdf", bytes.NewReader([]byte("second")))
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.ErrorIs(t, s.Reserve("Algo/a.pdf"), fs.ErrExist)

	data, err := os.ReadFile(s.Path("Algo/a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, s.Reserve("Algo/b.zip"))
	size, err := s.Size("Algo/b.zip")
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestMoveNeverReplacesDestination(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Save("Algo/a.pdf", []byte("a"))
	require.NoError(t, err)
	_, err = s.Save("Physics/b.pdf", []byte("b"))
	require.NoError(t, err)

	err = s.Move("Algo/a.pdf", "Physics/b.pdf")
	assert.ErrorIs(t, err, fs.ErrExist)

	kept, err := os.ReadFile(s.Path("Physics/b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(kept))
	_, err = os.Stat(s.Path("Algo/a.pdf"))
	assert.NoError(t, err)
}
