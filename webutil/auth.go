package webutil

import (
	"context"
	"net/http"
	"strings"

	"github.com/dynamicdo/dynamicdo/auth"
)

type contextKey string

const (
	ctxKeyUserID contextKey = "user_id"
	ctxKeyEmail  contextKey = "email"
)

// Authenticator verifies the bearer token on every request and stashes the
// resolved identity in the request context. Handlers downstream never see a
// client-supplied user id.
func Authenticator(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.Verify(token)
			if err != nil {
				RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxKeyEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id placed by Authenticator, or ""
// on an unauthenticated request.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

// UserEmail returns the authenticated email placed by Authenticator.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(ctxKeyEmail).(string)
	return email
}
