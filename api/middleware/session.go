package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/responses"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/session"
)

// Session resolves the anonymous shopper session from its signed cookie and
// issues a new one when the cookie is missing, expired or tampered with.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sessionID := ""

			if cookie, err := r.Cookie(cfg.CookieName); err == nil && cookie.Value != "" {
				if claims, err := session.Parse(cfg, cookie.Value); err == nil {
					sessionID = claims.SessionID.String()
				} else if logg != nil {
					logg.Warn(ctx, "session cookie rejected; issuing a new session")
				}
			}

			if sessionID == "" {
				id := uuid.New()
				now := time.Now()
				token, err := session.Mint(cfg, now, id)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session"))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Expires:  now.Add(cfg.TTL),
					MaxAge:   int(cfg.TTL / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				sessionID = id.String()
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
