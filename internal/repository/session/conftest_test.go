package session

import (
	"context"
	"time"

	"github.com/kailas-cloud/buscadoc/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data     map[string][]byte
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	delErr   error
	expireFn func(ctx context.Context, key string, ttl time.Duration) error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl)
	}
	if _, ok := m.data[key]; ok {
		m.ttls[key] = ttl
	}
	return nil
}
