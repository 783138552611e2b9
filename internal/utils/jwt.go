package utils // package utils provides helpers for token issuing and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by Parse for any malformed, expired or
// wrongly signed token. Callers should not distinguish between causes.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT along with its expiry.  The Token
// field is what clients send back in the Authorization header as
// "Bearer <token>".
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is the payload carried by access tokens.  The subject (sub) is the
// username; Role mirrors users.role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret.  Tokens live
// for ttlMin minutes.
func NewTokenService(secret string, ttlMin int) *TokenService {
	if ttlMin <= 0 {
		ttlMin = 60
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMin) * time.Minute,
		now:    time.Now,
	}
}

// Issue builds and signs a token for username.  The JWT includes the
// subject (sub), role, expiration (exp) and issued at (iat) claims.
func (s *TokenService) Issue(username, role string) (AccessToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Parse verifies raw and returns its claims.  Only HS256 is accepted and
// the token must carry a non-empty subject.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
