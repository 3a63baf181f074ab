package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-gateway-auth/identity"
	apperrors "github.com/jrsteele09/go-gateway-auth/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the payload of a session token. The token is self-contained:
// validity depends only on the signature and the exp claim.
type Claims struct {
	UserID  string  `json:"user_id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns the iat claim, or the zero time when absent
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns the exp claim, or the zero time when absent
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Codec issues and verifies session tokens
type Codec struct {
	signer Signer
	expiry time.Duration
}

func NewCodec(signer Signer, expiry time.Duration) *Codec {
	return &Codec{
		signer: signer,
		expiry: expiry,
	}
}

// Issue creates a signed token for the identity, valid from now for the configured lifetime.
func (c *Codec) Issue(id identity.Claims) (string, error) {
	now := NowTimeFunc()
	claims := &Claims{
		UserID:  id.SubjectID,
		Email:   id.Email,
		Name:    id.DisplayName,
		Picture: id.PictureURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		},
	}
	return c.signer.Sign(claims)
}

// Verify checks the signature and expiry of a token. Every failure wraps
// ErrInvalidToken so callers can treat them alike; expired tokens also wrap ErrTokenExpired.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, apperrors.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
