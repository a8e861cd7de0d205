// Package history persists the search and upload logs as capped lists.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
)

// store is the consumer interface for history logs (ISP).
type store interface {
	RPushCapped(ctx context.Context, key string, maxLen int, values ...[]byte) error
	LRange(ctx context.Context, key string, start, stop int) ([][]byte, error)
}

// Repo appends log entries as JSON list items, oldest first.
type Repo struct {
	store     store
	prefix    string
	maxSearch int
	maxUpload int
}

// New creates a history repository keeping at most maxSearch search entries
// and maxUpload upload entries.
func New(s store, prefix string, maxSearch, maxUpload int) *Repo {
	return &Repo{store: s, prefix: prefix, maxSearch: maxSearch, maxUpload: maxUpload}
}

func (r *Repo) searchKey() string { return r.prefix + "history:search" }
func (r *Repo) uploadKey() string { return r.prefix + "history:upload" }

// AppendSearch logs a search.
func (r *Repo) AppendSearch(ctx context.Context, e domhist.SearchEntry) error {
	return appendEntry(ctx, r.store, r.searchKey(), r.maxSearch, e)
}

// Searches returns the retained search log, oldest first.
func (r *Repo) Searches(ctx context.Context) ([]domhist.SearchEntry, error) {
	return listEntries[domhist.SearchEntry](ctx, r.store, r.searchKey())
}

// AppendUpload logs an upload.
func (r *Repo) AppendUpload(ctx context.Context, e domhist.UploadEntry) error {
	return appendEntry(ctx, r.store, r.uploadKey(), r.maxUpload, e)
}

// Uploads returns the retained upload log, oldest first.
func (r *Repo) Uploads(ctx context.Context) ([]domhist.UploadEntry, error) {
	return listEntries[domhist.UploadEntry](ctx, r.store, r.uploadKey())
}

func appendEntry[T any](ctx context.Context, s store, key string, maxLen int, e T) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	if err := s.RPushCapped(ctx, key, maxLen, data); err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	return nil
}

func listEntries[T any](ctx context.Context, s store, key string) ([]T, error) {
	items, err := s.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var e T
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s entry: %w", key, err)
		}
		out = append(out, e)
	}
	return out, nil
}
