package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/buscadoc/internal/db"
	"github.com/kailas-cloud/buscadoc/internal/domain"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// store is the consumer interface for sessions (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Repo keeps sessions and their uploads as JSON values that expire after ttl.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a session repository. Keys are <prefix>session:<id> and
// <prefix>session:<id>:upload.
func New(s store, prefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, ttl: ttl}
}

func (r *Repo) sessionKey(id string) string { return r.prefix + "session:" + id }
func (r *Repo) uploadKey(id string) string  { return r.prefix + "session:" + id + ":upload" }

// Save stores a session, resetting its TTL.
func (r *Repo) Save(ctx context.Context, s domsess.Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, r.sessionKey(s.ID()), data, r.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a session. A missing or expired session is domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domsess.Session, error) {
	data, err := r.store.Get(ctx, r.sessionKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsess.Session{}, domain.ErrNotFound
		}
		return domsess.Session{}, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

// Touch extends the session and its upload by another ttl.
func (r *Repo) Touch(ctx context.Context, id string) error {
	if err := r.store.Expire(ctx, r.sessionKey(id), r.ttl); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if err := r.store.Expire(ctx, r.uploadKey(id), r.ttl); err != nil {
		return fmt.Errorf("touch upload: %w", err)
	}
	return nil
}

// Delete removes a session and its upload.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.uploadKey(id)); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	if err := r.store.Del(ctx, r.sessionKey(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SaveUpload replaces the session's uploaded dataset.
func (r *Repo) SaveUpload(ctx context.Context, id string, u domsess.Upload) error {
	data, err := encodeUpload(u)
	if err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, r.uploadKey(id), data, r.ttl); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// GetUpload loads the session's uploaded dataset. No upload is domain.ErrNotFound.
func (r *Repo) GetUpload(ctx context.Context, id string) (domsess.Upload, error) {
	data, err := r.store.Get(ctx, r.uploadKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsess.Upload{}, domain.ErrNotFound
		}
		return domsess.Upload{}, fmt.Errorf("get upload: %w", err)
	}
	return decodeUpload(data)
}

// DeleteUpload drops the session's uploaded dataset.
func (r *Repo) DeleteUpload(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.uploadKey(id)); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
