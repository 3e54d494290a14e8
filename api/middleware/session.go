package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/api/responses"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

// VisitLoader is the session manager surface the middleware needs.
type VisitLoader interface {
	Load(ctx context.Context, sessionID string) (*session.Visit, error)
	Save(ctx context.Context, sessionID string, visit *session.Visit) error
}

// VisitSession assigns each browser a cookie-identified visit, loads its
// state before the handler runs, and writes it back afterward when the
// handler changed anything.
func VisitSession(manager VisitLoader, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				sessionID = cookie.Value
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					Expires:  time.Now().Add(cfg.TTL),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			visit, err := manager.Load(ctx, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithVisit(ctx, sessionID, visit)))

			// The response is already on the wire; a failed write here only
			// costs this request's cart changes, so it is logged, not fatal.
			if err := manager.Save(ctx, sessionID, visit); err != nil && logg != nil {
				logg.Error(ctx, "session.save_failed", err)
			}
		})
	}
}
