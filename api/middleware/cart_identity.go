package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/pkg/auth/session"
	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
)

const (
	cartTokenCookie = "cart_token"
	cartTokenHeader = "X-Cart-Token"

	cartTokenTTL = 30 * 24 * time.Hour
)

// CartIdentity resolves the shopper identity for cart and checkout routes.
// A valid bearer token wins; otherwise the anonymous cart token is taken from
// the cookie or header, minting a fresh one when the shopper has none. An
// invalid bearer token degrades to anonymous instead of failing the request.
func CartIdentity(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				if claims, err := authenticate(ctx, cfg, verifier, token); err == nil {
					next.ServeHTTP(w, r.WithContext(seedClaims(ctx, logg, claims)))
					return
				}
			}

			cartToken := anonymousToken(r)
			if cartToken == "" {
				cartToken = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cartTokenCookie,
				Value:    cartToken,
				Path:     "/",
				MaxAge:   int(cartTokenTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(cartTokenHeader, cartToken)

			ctx = WithCartToken(ctx, cartToken)
			if logg != nil {
				ctx = logg.WithCartToken(ctx, cartToken)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func anonymousToken(r *http.Request) string {
	if cookie, err := r.Cookie(cartTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get(cartTokenHeader)
}
