package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind tells access tokens apart from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload: sub, iat and exp from the registered set plus
// the subject's email and the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email"`
	Kind  TokenKind `json:"kind"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenCodec issues and validates HS256-signed tokens.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is the lifetime of access tokens issued by IssuePair.
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

// Issue signs a token for the subject valid for ttl, truncated to whole
// seconds. ttl must be at least one second.
func (c *TokenCodec) Issue(subjectID, email string, kind TokenKind, ttl time.Duration) (string, error) {
	ttl = ttl.Truncate(time.Second)
	if ttl < time.Second {
		return "", fmt.Errorf("token ttl must be at least 1s, got %s", ttl)
	}

	iat := c.now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
		},
		Email: email,
		Kind:  kind,
	})

	return token.SignedString(c.secret)
}

// IssuePair issues an access and a refresh token for the subject.
func (c *TokenCodec) IssuePair(subjectID, email string) (*TokenPair, error) {
	access, err := c.Issue(subjectID, email, KindAccess, c.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := c.Issue(subjectID, email, KindRefresh, c.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate parses tokenString and returns its claims. Any signature,
// structure, algorithm or expiry problem yields common.ErrInvalidToken.
// Expiry is exclusive and there is no leeway.
func (c *TokenCodec) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if !c.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return claims, nil
}
