package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"certledger/storage"
)

// Manager provides a minimal interface for reading and writing contract
// records in the underlying key-value store. Every key is scoped to the
// contract's namespace so multiple contracts can share one database without
// colliding.
type Manager struct {
	db        storage.Database
	namespace []byte
}

// NewManager creates a state manager operating on the provided database under
// the given namespace prefix. An empty namespace is permitted and leaves keys
// unscoped.
func NewManager(db storage.Database, namespace []byte) *Manager {
	return &Manager{db: db, namespace: append([]byte(nil), namespace...)}
}

func (m *Manager) storageKey(key []byte) []byte {
	buf := make([]byte, len(m.namespace)+len(key))
	copy(buf, m.namespace)
	copy(buf[len(m.namespace):], key)
	return buf
}

// KVPut stores the provided value under the supplied key using RLP encoding.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(m.storageKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.db.Get(m.storageKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVHas reports whether any value is stored under the supplied key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	return m.db.Has(m.storageKey(key))
}

// KVDelete removes the value stored under the supplied key. Deleting an absent
// key is not an error.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.db.Delete(m.storageKey(key))
}
