package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken covers malformed, expired, and wrongly typed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned when a refresh token was already rotated
	// or explicitly revoked.
	ErrTokenRevoked = errors.New("token revoked")
)

// RefreshToken is the persisted record of an issued refresh token. Only the
// token's JTI is stored, never the signed token itself.
type RefreshToken struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}

// RefreshStore persists refresh token state so rotation can invalidate the
// presented token.
type RefreshStore interface {
	Save(ctx context.Context, t *RefreshToken) error
	Get(ctx context.Context, id uuid.UUID) (*RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenPair is the response body of the token endpoints. Field names follow
// the conventional simple-JWT shape clients expect.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService mints and rotates HMAC-signed token pairs.
type TokenService struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
	now        func() time.Time
}

func NewTokenService(signingKey []byte, accessTTL, refreshTTL time.Duration, store RefreshStore) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

// Issue mints an access/refresh pair for the caller and records the refresh
// token's JTI so it can be revoked on rotation.
func (s *TokenService) Issue(ctx context.Context, id Identity) (*TokenPair, error) {
	now := s.now()

	access, err := s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Username:  id.Username,
		Role:      id.Role,
		Superuser: id.Elevated,
		TokenType: TokenTypeAccess,
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	jti := uuid.New()
	refresh, err := s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
		Username:  id.Username,
		Role:      id.Role,
		Superuser: id.Elevated,
		TokenType: TokenTypeRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.store.Save(ctx, &RefreshToken{
		ID:        jti,
		UserID:    id.UserID,
		ExpiresAt: now.Add(s.refreshTTL),
	}); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Rotate validates the presented refresh token, revokes it, and issues a new
// pair. A token that was already rotated is rejected, so each refresh token
// is usable exactly once.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.store.Get(ctx, jti)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if stored.Revoked {
		return nil, ErrTokenRevoked
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	if err := s.store.Revoke(ctx, jti); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.Issue(ctx, Identity{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
		Elevated: claims.Superuser,
	})
}

// RevokeAll invalidates every outstanding refresh token for the user.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.store.RevokeAllForUser(ctx, userID)
}

func (s *TokenService) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}
