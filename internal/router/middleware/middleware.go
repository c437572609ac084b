package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type AuthKey struct{}

// AuthMiddleware rejects requests without a valid bearer token and passes the
// claims down the context.
func AuthMiddleware(tokenMaker *JWTMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifyClaimsFromAuthHeader(r, tokenMaker)
			if err != nil {
				http.Error(w, fmt.Sprintf("error verifying token: %v", err), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AuthKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WebsocketAuthMiddleware is AuthMiddleware for upgrade requests. Browsers
// cannot set headers on a websocket handshake, so a ?token= query parameter
// is accepted when the Authorization header is absent. The ResponseWriter is
// passed through untouched so the upgrade can hijack it.
func WebsocketAuthMiddleware(tokenMaker *JWTMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				claims *ViewerClaims
				err    error
			)
			if token := r.URL.Query().Get("token"); token != "" && r.Header.Get("Authorization") == "" {
				claims, err = tokenMaker.VerifyToken(token)
				if err != nil {
					err = fmt.Errorf("invalid token: %w", err)
				}
			} else {
				claims, err = verifyClaimsFromAuthHeader(r, tokenMaker)
			}
			if err != nil {
				http.Error(w, fmt.Sprintf("error verifying token: %v", err), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AuthKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims AuthMiddleware stored, if any.
func ClaimsFromContext(ctx context.Context) (*ViewerClaims, bool) {
	claims, ok := ctx.Value(AuthKey{}).(*ViewerClaims)
	return claims, ok
}

func verifyClaimsFromAuthHeader(r *http.Request, tokenMaker *JWTMaker) (*ViewerClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header is missing")
	}

	fields := strings.Fields(authHeader)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return nil, fmt.Errorf("invalid authorization header")
	}

	claims, err := tokenMaker.VerifyToken(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
