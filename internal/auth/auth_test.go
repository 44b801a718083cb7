package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.GenerateToken(42, "ann")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ann", claims.Username)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	good, err := svc.GenerateToken(42, "ann")
	require.NoError(t, err)

	other, err := NewJWTService("other", time.Hour).GenerateToken(42, "ann")
	require.NoError(t, err)
	expired, err := NewJWTService("secret", -time.Minute).GenerateToken(42, "ann")
	require.NoError(t, err)
	noUser, err := svc.GenerateToken(0, "ghost")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 42}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", good[:len(good)-2] + "xx"},
		{"wrong secret", other},
		{"expired", expired},
		{"no user", noUser},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.GenerateToken(7, "bo")
	require.NoError(t, err)

	var seen *Claims
	h := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		header string
		status int
		errMsg string
	}{
		{"missing header", http.MethodGet, "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", http.MethodGet, "Basic " + token, http.StatusUnauthorized, "invalid authorization format"},
		{"bad token", http.MethodGet, "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"preflight passes", http.MethodOptions, "", http.StatusNoContent, ""},
		{"valid", http.MethodGet, "Bearer " + token, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(tt.method, "/api/rooms", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.errMsg != "" {
				assert.JSONEq(t, `{"error":"`+tt.errMsg+`"}`, rec.Body.String())
			}
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.UserID)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil)
	assert.Equal(t, "abc", TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "bearer xyz")
	assert.Equal(t, "xyz", TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.Empty(t, TokenFromRequest(req))
}
