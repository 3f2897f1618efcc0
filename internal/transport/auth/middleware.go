package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"hub3-slips/internal/domain"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

// TokenFinder resolves a plain "id|secret" personal access token.
type TokenFinder interface {
	FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error)
}

var (
	ErrNoToken      = errors.New("no token")
	ErrTokenExpired = errors.New("token expired")
)

// tokenFromRequest prefers the Authorization header and falls back to the
// ?token= query parameter, which browsers need for websocket upgrades.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Authenticate returns the user the request's token belongs to.
func Authenticate(r *http.Request, tokens TokenFinder, now time.Time) (int64, error) {
	plain := tokenFromRequest(r)
	if plain == "" {
		return 0, ErrNoToken
	}

	pat, err := tokens.FindTokenByPlainToken(r.Context(), plain)
	if err != nil {
		return 0, err
	}
	if pat.ExpiresAt != nil && pat.ExpiresAt.Before(now) {
		return 0, ErrTokenExpired
	}
	return pat.UserID, nil
}

func SanctumMiddleware(tokens TokenFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := Authenticate(r, tokens, time.Now())
			if err != nil {
				log.Printf("[AUTH] %s %s: %v", r.Method, r.URL.Path, err)
				msg := "Unauthorized"
				if errors.Is(err, ErrTokenExpired) {
					msg = "Token expired"
				}
				http.Error(w, msg, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0, errors.New("userID not found in context")
	}
	return userID, nil
}
