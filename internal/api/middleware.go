package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
)

// sessionClaims is the subset of the signed-in session token the gateway
// cares about: who the user is.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RequireSession verifies the bearer token on every resource route and
// deposits the signed-in session into the request context. The raw token is
// kept alongside the identity because the backend client forwards it
// upstream.
func RequireSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				respondWithError(w, err)
				return
			}

			claims := &sessionClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				respondWithError(w, fmt.Errorf("%w: invalid session token", app_errors.ErrUnauthorized))
				return
			}

			session := backend.Session{
				Identity: backend.Identity{ID: claims.Subject, Email: claims.Email},
				Token:    raw,
			}
			next.ServeHTTP(w, r.WithContext(backend.WithSession(r.Context(), session)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: missing Authorization header", app_errors.ErrUnauthorized)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("%w: malformed Authorization header", app_errors.ErrUnauthorized)
	}
	return parts[1], nil
}

// currentUserID pulls the signed-in user's id out of the request context.
func currentUserID(r *http.Request) (string, error) {
	session, ok := backend.SessionFromContext(r.Context())
	if !ok {
		return "", fmt.Errorf("%w: no signed-in session", app_errors.ErrUnauthorized)
	}
	return session.Identity.ID, nil
}
