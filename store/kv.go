// Package store keeps the per-account profile record on a key/value backend.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a key, or a profile, is absent.
var ErrNotFound = errors.New("not found")

// KV is the storage surface the profile store needs: one string value per key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Scoped prefixes every key with scope, so one backend can hold a profile per account.
type Scoped struct {
	kv    KV
	scope string
}

func NewScoped(kv KV, scope string) *Scoped {
	return &Scoped{kv: kv, scope: scope}
}

func (s *Scoped) key(k string) string { return s.scope + ":" + k }

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, s.key(key))
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.key(key), value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.key(key))
}
