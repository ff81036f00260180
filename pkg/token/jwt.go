package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "auth-service/pkg/errors"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the registered claim set plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// Codec signs and verifies the service's bearer tokens with a shared
// HMAC secret.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) IssueAccessToken(userID uuid.UUID) (string, error) {
	return c.issue(userID.String(), TypeAccess, c.accessTTL)
}

func (c *Codec) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return c.issue(userID.String(), TypeRefresh, c.refreshTTL)
}

func (c *Codec) issue(subject, tokenType string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Decode verifies signature and expiry, then checks the embedded type.
// A well-formed, unexpired token of the wrong kind fails with
// ErrWrongTokenType.
func (c *Codec) Decode(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, appErrors.ErrWrongTokenType
	}

	return claims, nil
}
