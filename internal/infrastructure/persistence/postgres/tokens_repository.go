package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

const (
	insertTokenSQL = `
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at, is_revoked)
VALUES ($1, $2, $3, $4, $5, $6)`

	// Rotation is a single upsert keyed on the per-user unique constraint: the
	// row id and created_at survive, the value and expiry are overwritten, and
	// concurrent rotations for one user serialize on the row. A revoked row
	// becomes live again on re-login.
	rotateTokenSQL = `
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at, is_revoked)
VALUES ($1, $2, $3, $4, $5, FALSE)
ON CONFLICT (user_id) DO UPDATE
SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, is_revoked = FALSE`

	// The presented-value match makes validate-then-rotate a single atomic
	// write: the losing side of a concurrent refresh matches zero rows.
	exchangeTokenSQL = `
UPDATE refresh_tokens
SET token = $1, expires_at = $2, is_revoked = FALSE
WHERE user_id = $3 AND token = $4 AND NOT is_revoked`

	selectTokenSQL = `
SELECT id, user_id, token, created_at, expires_at, is_revoked
FROM refresh_tokens`

	revokeTokenSQL = `UPDATE refresh_tokens SET is_revoked = TRUE WHERE user_id = $1`
)

// TokensRepository implements ports.TokensRepository on pgx.
type TokensRepository struct {
	pool *pgxpool.Pool
}

func NewTokensRepository(pool *pgxpool.Pool) *TokensRepository {
	return &TokensRepository{pool: pool}
}

func (r *TokensRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	row := r.pool.QueryRow(ctx, selectTokenSQL+` WHERE token = $1`, token)
	return scanToken(row)
}

func (r *TokensRepository) GetByUserID(ctx context.Context, userID domain.UserID) (*domain.RefreshToken, error) {
	row := r.pool.QueryRow(ctx, selectTokenSQL+` WHERE user_id = $1`, userID.String())
	return scanToken(row)
}

func (r *TokensRepository) Rotate(ctx context.Context, token *domain.RefreshToken) error {
	_, err := r.pool.Exec(ctx, rotateTokenSQL,
		token.ID.String(), token.UserID.String(), token.Token,
		token.CreatedAt, token.ExpiresAt,
	)
	return err
}

func (r *TokensRepository) Exchange(ctx context.Context, next *domain.RefreshToken, presented string) error {
	tag, err := r.pool.Exec(ctx, exchangeTokenSQL,
		next.Token, next.ExpiresAt, next.UserID.String(), presented,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrInvalidToken
	}
	return nil
}

func (r *TokensRepository) Revoke(ctx context.Context, userID domain.UserID) error {
	tag, err := r.pool.Exec(ctx, revokeTokenSQL, userID.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrTokenNotFound
	}
	return nil
}

func scanToken(row pgx.Row) (*domain.RefreshToken, error) {
	var (
		rawID     string
		rawUserID string
		t         domain.RefreshToken
	)
	err := row.Scan(&rawID, &rawUserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.IsRevoked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseTokenID(rawID)
	if err != nil {
		return nil, err
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	t.ID = id
	t.UserID = userID
	return &t, nil
}

// Ensure TokensRepository implements ports.TokensRepository.
var _ ports.TokensRepository = (*TokensRepository)(nil)
