package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshStorePG persists refresh token state in the refresh_token table.
type RefreshStorePG struct {
	pool *pgxpool.Pool
}

func NewRefreshStorePG(pool *pgxpool.Pool) *RefreshStorePG {
	return &RefreshStorePG{pool: pool}
}

func (s *RefreshStorePG) Save(ctx context.Context, t *RefreshToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_token (id, user_id, expires_at, revoked) VALUES ($1, $2, $3, false)`,
		t.ID, t.UserID, t.ExpiresAt)
	return err
}

func (s *RefreshStorePG) Get(ctx context.Context, id uuid.UUID) (*RefreshToken, error) {
	var t RefreshToken
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, expires_at, revoked, created_at FROM refresh_token WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *RefreshStorePG) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE refresh_token SET revoked = true WHERE id = $1`, id)
	return err
}

func (s *RefreshStorePG) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE refresh_token SET revoked = true WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes tokens that expired before the cutoff. Intended for
// periodic cleanup, not request paths.
func (s *RefreshStorePG) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM refresh_token WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
