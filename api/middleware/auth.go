package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopkart-labs/shopkart-backend/api/responses"
	pkgAuth "github.com/shopkart-labs/shopkart-backend/pkg/auth"
	"github.com/shopkart-labs/shopkart-backend/pkg/auth/session"
	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := authenticate(r.Context(), cfg, verifier, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := seedClaims(r.Context(), logg, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, token string) (*pkgAuth.AccessTokenClaims, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if verifier != nil {
		ok, err := verifier.HasSession(ctx, claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	return claims, nil
}

func seedClaims(ctx context.Context, logg *logger.Logger, claims *pkgAuth.AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	ctx = context.WithValue(ctx, ctxIsAdmin, claims.IsAdmin)
	ctx = context.WithValue(ctx, ctxSessionID, claims.ID)

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id":  claims.UserID.String(),
			"is_admin": claims.IsAdmin,
		})
	}
	return ctx
}
