package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing auth token")
	ErrInvalidToken = errors.New("invalid auth token")
)

const (
	DefaultCookieName = "token"
	userIDClaim       = "userId"
)

// Verifier resolves the authenticated user of an upgrade request.
type Verifier interface {
	Verify(r *http.Request) (string, error)
}

// JWTVerifier accepts HMAC-signed tokens carrying a userId claim, read from the
// auth cookie, an Authorization bearer header, or a token query parameter.
type JWTVerifier struct {
	secret     []byte
	cookieName string
}

func NewJWTVerifier(secret, cookieName string) *JWTVerifier {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &JWTVerifier{secret: []byte(secret), cookieName: cookieName}
}

func (v *JWTVerifier) Verify(r *http.Request) (string, error) {
	raw := tokenFromRequest(r, v.cookieName)
	if raw == "" {
		return "", ErrMissingToken
	}
	return v.Parse(raw)
}

// Parse validates a raw token string and returns its user id.
func (v *JWTVerifier) Parse(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims[userIDClaim].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Sign issues a token for userID. Used by tests and local tooling; the relay
// itself never mints credentials.
func (v *JWTVerifier) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		userIDClaim: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
