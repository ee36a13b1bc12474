package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/ticket-mgt/ticket-api/internal/domain"
)

// TokenIssuer mints bearer tokens for a user identity. Authentication is an
// exact match against the stored value; JWT tokens must also pass Parse.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// NewTokenIssuer builds the issuer for the configured format.
func NewTokenIssuer(format domain.TokenFormat, prefix, secret string) (TokenIssuer, error) {
	switch domain.TokenFormat(strings.ToLower(string(format))) {
	case domain.TokenFormatOpaque, "":
		return NewOpaqueIssuer(prefix), nil
	case domain.TokenFormatJWT:
		if secret == "" {
			return nil, errors.New("jwt token format requires a secret")
		}
		return NewJWTIssuer(secret), nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

// sequence hands out strictly increasing values seeded from the millisecond clock.
type sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func (s *sequence) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.now().UnixMilli()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return n
}

// OpaqueIssuer produces "<prefix>-<userID>-<n>" tokens with no signature.
type OpaqueIssuer struct {
	prefix string
	seq    *sequence
}

// NewOpaqueIssuer builds an opaque issuer; an empty prefix falls back to "mocked-jwt".
func NewOpaqueIssuer(prefix string) *OpaqueIssuer {
	if prefix == "" {
		prefix = "mocked-jwt"
	}
	return &OpaqueIssuer{prefix: prefix, seq: &sequence{now: time.Now}}
}

// Issue returns a token unique for this issuer's lifetime.
func (o *OpaqueIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}
	return fmt.Sprintf("%s-%s-%d", o.prefix, userID, o.seq.next()), nil
}

// Claims describes the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTIssuer mints HS256 tokens. There is no expiry claim; a token stays valid
// until the next login replaces it.
type JWTIssuer struct {
	secret []byte
	seq    *sequence
}

// NewJWTIssuer builds a JWT issuer.
func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), seq: &sequence{now: time.Now}}
}

// Issue builds and signs a JWT for the user.
func (j *JWTIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}
	n := j.seq.next()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			ID:       fmt.Sprintf("%s-%d", userID, n),
			IssuedAt: jwt.NewNumericDate(time.UnixMilli(n)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Parse validates the signature and returns claims.
func (j *JWTIssuer) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
