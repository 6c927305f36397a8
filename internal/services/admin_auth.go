package services

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminSubject = "admin"
	tokenIssuer  = "studio-backend"
)

// AdminAuth gates the admin console behind a shared key and hands out
// short-lived HS256 session tokens. Key is the operator password; Secret
// signs the tokens and defaults to Key when empty.
type AdminAuth struct {
	Key    string
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

// NewAdminAuth constructs an AdminAuth.
func NewAdminAuth(key, secret string, ttl time.Duration) *AdminAuth {
	return &AdminAuth{Key: key, Secret: secret, TTL: ttl, Now: time.Now}
}

// Enabled reports whether an admin key is configured.
func (a *AdminAuth) Enabled() bool { return a != nil && a.Key != "" }

// Login exchanges the admin key for a session token.
func (a *AdminAuth) Login(key string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrAdminDisabled
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(a.Key)) != 1 {
		return "", time.Time{}, ErrInvalidAdminKey
	}
	now := a.now()
	ttl := a.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks a session token issued by Login.
func (a *AdminAuth) Verify(token string) error {
	if !a.Enabled() {
		return ErrAdminDisabled
	}
	if token == "" {
		return ErrInvalidToken
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return a.secret(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (a *AdminAuth) secret() []byte {
	if a.Secret != "" {
		return []byte(a.Secret)
	}
	return []byte(a.Key)
}

func (a *AdminAuth) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
