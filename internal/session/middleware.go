package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

// FromContext returns the session attached by Middleware, or nil when
// the middleware did not run.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Middleware loads the visitor's session from store (issuing a new
// cookie when none is present), attaches it to the request context,
// and writes it back after the handler if it was mutated.
func Middleware(store Store, cookieName string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cookieName); err == nil {
				id = c.Value
			}
			fresh := id == ""
			if fresh {
				id = uuid.NewString()
			}

			sess, err := store.Load(r.Context(), id)
			if err != nil {
				slog.ErrorContext(r.Context(), "session load failed", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			if fresh {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))

			if sess.Dirty() {
				if err := store.Save(r.Context(), sess); err != nil {
					slog.ErrorContext(r.Context(), "session save failed",
						"session_id", sess.ID(), "error", err)
				}
			}
		})
	}
}
