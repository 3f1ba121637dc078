package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUnknownKey = errors.New("jwtauth: unknown kid")

type Claims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 session token for username with the current key.
func Issue(p KeyProvider, issuer, username string, ttl time.Duration) (string, error) {
	kid := p.CurrentKID()
	key, ok := p.SecretFor(kid)
	if !ok {
		return "", ErrUnknownKey
	}
	now := time.Now()
	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	t.Header["kid"] = kid
	return t.SignedString(key)
}

func Parse(p KeyProvider, issuer, raw string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := p.SecretFor(kid)
		if !ok {
			return nil, ErrUnknownKey
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
