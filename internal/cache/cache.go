// Package cache memoizes expensive enumeration results behind a small
// key-value Store.
//
// Keys are derived from a namespace and the parameters that shaped the
// result, so changing a lattice, a filter bound or SchemaVersion produces a
// new key and stale entries are simply never read again. A missing entry is
// reported as (nil, false, nil), never as an error.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// SchemaVersion is mixed into every key; bump it when the payload layout
// changes.
const SchemaVersion = 1

// ErrEmptyKey is returned by stores given an empty key.
var ErrEmptyKey = errors.New("cache: empty key")

// Store persists opaque payloads by key. Implementations are safe for
// concurrent use.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
	Invalidate(ctx context.Context, key string) error
}

// Key returns "namespace:<hex sha256>" of params and SchemaVersion.
func Key(namespace string, params any) (string, error) {
	raw, err := json.Marshal(struct {
		Schema int `json:"schema"`
		Params any `json:"params"`
	}{SchemaVersion, params})
	if err != nil {
		return "", fmt.Errorf("cache: encode key params: %w", err)
	}
	sum := sha256.Sum256(raw)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// MemoryStore keeps payloads in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, payload []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	m.data[key] = append([]byte(nil), payload...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
