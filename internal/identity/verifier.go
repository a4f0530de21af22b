package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("session secret not configured")
	ErrInvalidToken = errors.New("invalid session token")
)

// Principal is an authenticated dashboard user.
type Principal struct {
	UserID         string
	Email          string
	OrganizationID string
}

// Verifier checks a session token and returns the authenticated principal.
// A missing or unverifiable session yields (nil, nil); errors are reserved
// for infrastructure failure.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// JWTVerifier validates HS256 session tokens issued by the dashboard's
// sign-in flow against a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type sessionClaims struct {
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, nil
	}
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		// Expired and forged tokens are "no session", not an
		// infrastructure failure.
		return nil, nil
	}

	return &Principal{
		UserID:         claims.Subject,
		Email:          claims.Email,
		OrganizationID: claims.OrganizationID,
	}, nil
}

// SignSessionToken issues a session token for the given principal. The API
// itself never signs tokens in production; this mirrors the dashboard issuer
// for local development and tests.
func SignSessionToken(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email:          p.Email,
		OrganizationID: p.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

var _ Verifier = (*JWTVerifier)(nil)
