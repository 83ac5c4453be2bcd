package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutGetDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	doc := `{"name":"criminal-procedure","items":[]}`
	path, err := store.Put(context.Background(), "ab12cd34", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "ab/ab12cd34.json", path)

	rc, err := store.Get(context.Background(), path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, doc, string(data))

	require.NoError(t, store.Delete(context.Background(), path))
	_, err = store.Get(context.Background(), path)
	assert.Error(t, err)
}

func TestLocalStorageDeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "zz/zz99.json"))
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "de/deadbeef.json", PathFor("deadbeef"))
	assert.Equal(t, "a.json", PathFor("a"))
}
