package webutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamicdo/dynamicdo/auth"
)

func TestAuthenticator(t *testing.T) {
	tokens := auth.NewTokenService("test-secret")

	var gotUserID, gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		gotEmail = UserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticator(tokens)(next)

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Issue("user-123", "a@b.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/reminders/", nil)
		req.Header.Set(HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-123", gotUserID)
		assert.Equal(t, "a@b.com", gotEmail)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reminders/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid or expired token"}`, rec.Body.String())
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reminders/", nil)
		req.Header.Set(HeaderAuthorization, "Bearer nonsense")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
