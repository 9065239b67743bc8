package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"certledger/storage"
)

type record struct {
	Name  string
	Count uint64
}

func TestManagerRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	manager := NewManager(db, []byte("cert/"))

	stored := record{Name: "alpha", Count: 7}
	require.NoError(t, manager.KVPut([]byte("rec"), &stored))

	var loaded record
	ok, err := manager.KVGet([]byte("rec"), &loaded)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, stored, loaded)

	ok, err = manager.KVHas([]byte("rec"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, manager.KVDelete([]byte("rec")))
	ok, err = manager.KVGet([]byte("rec"), &loaded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManagerMissingKey(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	manager := NewManager(db, nil)

	var loaded record
	ok, err := manager.KVGet([]byte("absent"), &loaded)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, manager.KVDelete([]byte("absent")))
}

func TestManagerNamespacesAreDisjoint(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	a := NewManager(db, []byte("a/"))
	b := NewManager(db, []byte("b/"))

	require.NoError(t, a.KVPut([]byte("k"), record{Name: "a"}))

	var loaded record
	ok, err := b.KVGet([]byte("k"), &loaded)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = a.KVGet([]byte("k"), &loaded)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", loaded.Name)
}

func TestManagerRejectsEmptyKey(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	manager := NewManager(db, nil)

	require.Error(t, manager.KVPut(nil, record{}))
	_, err := manager.KVGet(nil, &record{})
	require.Error(t, err)
}
