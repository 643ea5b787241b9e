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

func TestJWTVerifier_TokenSources(t *testing.T) {
	v := NewJWTVerifier("secret", "")
	token, err := v.Sign("user-1", time.Minute)
	require.NoError(t, err)

	fromCookie := httptest.NewRequest(http.MethodGet, "/ws", nil)
	fromCookie.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	fromHeader := httptest.NewRequest(http.MethodGet, "/ws", nil)
	fromHeader.Header.Set("Authorization", "Bearer "+token)

	fromQuery := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)

	for name, r := range map[string]*http.Request{"cookie": fromCookie, "header": fromHeader, "query": fromQuery} {
		userID, err := v.Verify(r)
		require.NoError(t, err, name)
		assert.Equal(t, "user-1", userID, name)
	}
}

func TestJWTVerifier_MissingToken(t *testing.T) {
	v := NewJWTVerifier("secret", "")

	_, err := v.Verify(httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestJWTVerifier_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTVerifier("other", "").Sign("user-1", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTVerifier("secret", "").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_RejectsExpired(t *testing.T) {
	v := NewJWTVerifier("secret", "")
	token, err := v.Sign("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = v.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_RequiresUserIDClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTVerifier("secret", "").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
