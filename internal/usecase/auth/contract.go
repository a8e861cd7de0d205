package auth

import (
	"context"

	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// SessionStore persists sessions with a sliding expiry.
type SessionStore interface {
	Save(ctx context.Context, s domsess.Session) error
	Get(ctx context.Context, id string) (domsess.Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
