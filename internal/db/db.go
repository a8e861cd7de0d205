package db

import (
	"context"
	"time"
)

// Store is the storage facade used for sessions and history logs.
type Store interface {
	Pinger
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ListStore provides append-only capped lists.
type ListStore interface {
	// RPushCapped appends values and trims the list to its newest maxLen entries.
	// maxLen <= 0 disables trimming.
	RPushCapped(ctx context.Context, key string, maxLen int, values ...[]byte) error
	// LRange returns entries between start and stop inclusive; negative indexes count from the end.
	LRange(ctx context.Context, key string, start, stop int) ([][]byte, error)
}
