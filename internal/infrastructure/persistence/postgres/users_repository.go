package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

const (
	insertUserSQL = `
INSERT INTO users (id, email, password_hash, role, auth_type, first_name, last_name, date_of_birth)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectUserSQL = `
SELECT id, email, password_hash, role, auth_type, first_name, last_name, date_of_birth
FROM users`

	updateUserSQL = `
UPDATE users SET email = $2, password_hash = $3, role = $4, auth_type = $5,
	first_name = $6, last_name = $7, date_of_birth = $8
WHERE id = $1`
)

// UsersRepository implements ports.UsersRepository on pgx.
type UsersRepository struct {
	pool *pgxpool.Pool
}

func NewUsersRepository(pool *pgxpool.Pool) *UsersRepository {
	return &UsersRepository{pool: pool}
}

// CreateWithToken inserts the user and its refresh-token row atomically, so a
// cancelled registration leaves no partial state behind.
func (r *UsersRepository) CreateWithToken(ctx context.Context, user *domain.User, token *domain.RefreshToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, insertUserSQL,
		user.ID.String(), user.Email, user.PasswordHash, int(user.Role), int(user.AuthType),
		user.FirstName, user.LastName, user.DateOfBirth,
	); err != nil {
		// The registration use case pre-checks the email, but a concurrent
		// registration can still lose the race to the unique constraint.
		if isUniqueViolation(err) {
			return domerrors.ErrUserExists
		}
		return err
	}
	if _, err := tx.Exec(ctx, insertTokenSQL,
		token.ID.String(), token.UserID.String(), token.Token,
		token.CreatedAt, token.ExpiresAt, token.IsRevoked,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *UsersRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id.String())
	return scanUser(row)
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUserSQL+` WHERE email = $1`, email)
	return scanUser(row)
}

// GetIDByEmail returns nil when no user has the email; no empty-id sentinel.
func (r *UsersRepository) GetIDByEmail(ctx context.Context, email string) (*domain.UserID, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseUserID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *UsersRepository) GetRoleByID(ctx context.Context, id domain.UserID) (*domain.Role, error) {
	var raw int
	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id.String()).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	role := domain.Role(raw)
	return &role, nil
}

func (r *UsersRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.UserID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE role = $1`, int(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []domain.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := domain.ParseUserID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *UsersRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, selectUserSQL+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UsersRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, updateUserSQL,
		user.ID.String(), user.Email, user.PasswordHash, int(user.Role), int(user.AuthType),
		user.FirstName, user.LastName, user.DateOfBirth,
	)
	return err
}

// Delete removes the user and its refresh-token row in one transaction.
func (r *UsersRepository) Delete(ctx context.Context, id domain.UserID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, id.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		rawID    string
		role     int
		authType int
		u        domain.User
	)
	err := row.Scan(&rawID, &u.Email, &u.PasswordHash, &role, &authType, &u.FirstName, &u.LastName, &u.DateOfBirth)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	u.ID = id
	u.Role = domain.Role(role)
	u.AuthType = domain.AuthType(authType)
	return &u, nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure UsersRepository implements ports.UsersRepository.
var _ ports.UsersRepository = (*UsersRepository)(nil)
