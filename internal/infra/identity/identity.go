package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider resolves the externally-supplied session token to a user id. The
// wizard never manages authentication itself; it only needs to know who the
// submitting user is.
type Provider struct {
	secret []byte
}

func NewProvider(hmacSecret string) *Provider {
	return &Provider{secret: []byte(hmacSecret)}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// UserID validates the token and returns its subject.
func (p *Provider) UserID(token string) (string, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}

// Mint issues a short-lived token for userID. Used by the dev tooling and the
// stub backend; production tokens come from the real session provider.
func (p *Provider) Mint(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
