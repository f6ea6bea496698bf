package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save("attendance/job-1.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "attendance/job-1.csv", name)

	f, err := s.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(body))

	require.NoError(t, s.Delete(name))
	require.NoError(t, s.Delete(name))
	_, err = s.Open(name)
	require.Error(t, err)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../secret", "/etc/passwd", "a/../../b", ""} {
		_, err := s.Save(name, []byte("x"))
		assert.True(t, errors.Is(err, ErrOutsideBase), name)
	}
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Save("attendance/old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = s.Save("attendance/new.csv", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "attendance", "old.csv"), past, past))

	deleted, err := s.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance/old.csv"}, deleted)
}
