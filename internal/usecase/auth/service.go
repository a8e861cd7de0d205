// Package auth logs users in against a static account list and resolves
// session cookies back to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	"github.com/kailas-cloud/buscadoc/internal/metrics"
)

// Account is a user allowed to log in.
type Account struct {
	Username     string
	Name         string
	PasswordHash string // bcrypt
}

// Service authenticates users and manages their sessions.
type Service struct {
	accounts map[string]Account
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	limit rate.Limit
	burst int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates an auth service. Login attempts are unlimited until WithLoginRate is set.
func New(accounts []Account, sessions SessionStore) *Service {
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byName[a.Username] = a
	}
	return &Service{
		accounts: byName,
		sessions: sessions,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
		limit:    rate.Inf,
		limiters: make(map[string]*rate.Limiter),
	}
}

// WithLoginRate throttles login attempts per username.
func (s *Service) WithLoginRate(perSec float64, burst int) *Service {
	s.limit = rate.Limit(perSec)
	s.burst = burst
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(logger *zap.Logger) *Service {
	s.logger = logger
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login checks the password and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (domsess.Session, error) {
	acc, ok := s.accounts[username]
	key := username
	if !ok {
		// unknown names share one limiter
		key = ""
	}
	if !s.limiter(key).Allow() {
		metrics.LoginsTotal.WithLabelValues("limited").Inc()
		return domsess.Session{}, domain.ErrRateLimited
	}

	if !ok {
		// same work as a wrong password
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return domsess.Session{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return domsess.Session{}, domain.ErrInvalidCredentials
	}

	sess := domsess.New(s.newID(), username, s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domsess.Session{}, fmt.Errorf("save session: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("user logged in", zap.String("user", username))
	return sess, nil
}

// Logout closes a session and drops its upload. Unknown sessions are ignored.
func (s *Service) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session id and extends its lifetime.
func (s *Service) Authenticate(ctx context.Context, id string) (domsess.Session, error) {
	if id == "" {
		return domsess.Session{}, domain.ErrUnauthorized
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domsess.Session{}, domain.ErrUnauthorized
		}
		return domsess.Session{}, fmt.Errorf("get session: %w", err)
	}
	if err := s.sessions.Touch(ctx, id); err != nil {
		s.logger.Warn("failed to extend session", zap.String("user", sess.User()), zap.Error(err))
	}
	return sess, nil
}

// DisplayName returns the account's name, falling back to the username.
func (s *Service) DisplayName(username string) string {
	if acc, ok := s.accounts[username]; ok && acc.Name != "" {
		return acc.Name
	}
	return username
}

func (s *Service) limiter(username string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[username]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[username] = l
	}
	return l
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("buscadoc"), bcrypt.DefaultCost)
	})
	return dummy
}
