package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token usages. Access tokens authenticate requests; refresh tokens only
// mint new access tokens and carry a jti for revocation.
const (
	UsageAccess  = "access"
	UsageRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrWrongUsage   = errors.New("token used for the wrong purpose")
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Usage  string `json:"usage"`
	jwt.RegisteredClaims
}

// Pair is an access/refresh token pair issued on login.
type Pair struct {
	Access  string
	Refresh string
}

// Manager issues and validates the JWTs carried in auth cookies.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RevocationStore
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration, store RevocationStore) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue creates a fresh access/refresh pair for a user.
func (m *Manager) Issue(userID uint) (*Pair, error) {
	access, err := m.sign(userID, UsageAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, UsageRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a new access token, used by the refresh endpoint.
func (m *Manager) IssueAccess(userID uint) (string, error) {
	return m.sign(userID, UsageAccess, m.accessTTL)
}

func (m *Manager) sign(userID uint, usage string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Usage:  usage,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccess parses and verifies an access token.
func (m *Manager) ValidateAccess(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != UsageAccess {
		return nil, ErrWrongUsage
	}
	return claims, nil
}

// ValidateRefresh parses and verifies a refresh token, rejecting revoked ones.
func (m *Manager) ValidateRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != UsageRefresh {
		return nil, ErrWrongUsage
	}
	revoked, err := m.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// RevokeRefresh invalidates a refresh token until its natural expiry.
// Tokens that no longer parse are treated as already dead.
func (m *Manager) RevokeRefresh(ctx context.Context, tokenString string) error {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil
	}
	if claims.Usage != UsageRefresh {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return m.store.Revoke(ctx, claims.ID, ttl)
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
