package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workshops/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	id, email, password_hash, first_name, last_name, school, phone, avatar_url,
	role, status, reset_code_hash, reset_code_expires_at, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, school, phone, avatar_url,
			role, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.School,
		user.Phone,
		user.AvatarURL,
		user.Role,
		user.Status,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) ListByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	const query = `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, id, status)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	const query = `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, id, avatarURL)
}

func (r *UserRepository) SetResetCode(ctx context.Context, id string, codeHash []byte, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_code_hash = $2, reset_code_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, codeHash, expiresAt)
}

// UpdatePassword stores the new hash and clears any pending reset code in one statement.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_code_hash = NULL, reset_code_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, passwordHash)
}

func (r *UserRepository) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET reset_code_hash = NULL, reset_code_expires_at = NULL
		WHERE reset_code_expires_at IS NOT NULL AND reset_code_expires_at < $1
	`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.School,
		&user.Phone,
		&user.AvatarURL,
		&user.Role,
		&user.Status,
		&user.ResetCodeHash,
		&user.ResetCodeExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
