package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every parse failure: bad signature, expired,
// malformed. Callers get no hint which one it was.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and validates the signed bearer token that asserts an
// identity. Possession is sufficient; there is no revocation list, expiry is
// the only invalidation mechanism.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time // injectable clock for deterministic tests
}

var defaultManager *JWTManager

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		Secret: []byte(secret),
		TTL:    ttl,
		Now:    time.Now,
	}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue mints a token asserting {userID, username, expiresAt}.
func (m *JWTManager) Issue(userID, username string) (string, time.Time, error) {
	now := m.Now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse validates signature and expiry and returns the asserted claims.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.Now() }))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
