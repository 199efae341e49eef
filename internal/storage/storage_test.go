package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "docket.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)
	v, ok, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestStore_SetOverwrites(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Set("k", []byte(`1`)))
	require.NoError(t, s.Set("k", []byte(`2`)))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", string(v))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docket.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, Save(s, "items", []item{{Name: "a", Count: 1}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := Load(s, "items", []item(nil))
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "a", Count: 1}}, got)
}

func TestLoad_MissingReturnsDefault(t *testing.T) {
	m := NewMemory()
	got, err := Load(m, "items", []item{{Name: "seed"}})
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "seed"}}, got)
}

func TestLoad_CorruptReturnsDefault(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("items", []byte(`{not json`)))

	got, err := Load(m, "items", []item{{Name: "seed"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.Equal(t, []item{{Name: "seed"}}, got)
}

type failingBackend struct{}

func (failingBackend) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (failingBackend) Set(string, []byte) error         { return errors.New("quota exceeded") }

func TestSave_FailureIsPersistenceError(t *testing.T) {
	err := Save(failingBackend{}, "items", []item{{Name: "a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.True(t, strings.Contains(err.Error(), "quota exceeded"))

	got, err := Load(failingBackend{}, "items", 7)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 7, got)
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set("k", buf))
	buf[0] = 'z'
	v, _, _ := m.Get("k")
	assert.Equal(t, "abc", string(v))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:already", sqliteDSN("file:already"))
	dsn := sqliteDSN("/tmp/x.db")
	assert.True(t, strings.HasPrefix(dsn, "file:///tmp/x.db?"))
	assert.Contains(t, dsn, "mode=rwc")
}
