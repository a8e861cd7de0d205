package chi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	"github.com/kailas-cloud/buscadoc/internal/logger"
)

// exemptPaths are routes served without a session.
var exemptPaths = map[string]struct{}{
	"/auth/login":  {},
	"/auth/logout": {},
	"/health":      {},
	"/metrics":     {},
}

type sessionCtxKey struct{}

func contextWithSession(ctx context.Context, s domsess.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// sessionFromContext returns the session placed by SessionMiddleware.
func sessionFromContext(ctx context.Context) (domsess.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(domsess.Session)
	return s, ok
}

// SessionMiddleware requires a valid session cookie on every non-exempt route
// and adds the user to the request logger.
func (s *Server) SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			c, err := r.Cookie(s.cfg.CookieName)
			if err != nil || c.Value == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "login required")
				return
			}
			sess, err := s.auth.Authenticate(r.Context(), c.Value)
			if err != nil {
				s.handleDomainError(w, r, err)
				return
			}

			ctx := contextWithSession(r.Context(), sess)
			ctx = logger.ContextWithLogger(ctx, logger.FromContext(ctx).With(zap.String("user", sess.User())))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NoCache marks responses as not cacheable.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "-1")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
