// Package repository provides PostgreSQL and MySQL persistence for users and their
// demographic profiles.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/voces/voces/internal/database"
	apperrors "github.com/voces/voces/internal/errors"
	"github.com/voces/voces/internal/user/domain"
)

const postgresUserColumns = `id, username, email, password_hash, first_name, last_name, avatar_url, bio,
	role, status, last_activity_at, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgreSQLUserRepository implements user persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQL user repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

// Create inserts a new user. A unique violation on username or email becomes ErrUserAlreadyExists.
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (` + postgresUserColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.AvatarURL,
		user.Bio,
		string(user.Role),
		string(user.Status),
		user.LastActivityAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Save overwrites the mutable columns of an existing user.
func (r *PostgreSQLUserRepository) Save(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET email = $1,
				  password_hash = $2,
				  first_name = $3,
				  last_name = $4,
				  avatar_url = $5,
				  bio = $6,
				  role = $7,
				  status = $8,
				  last_activity_at = $9,
				  updated_at = $10
			  WHERE id = $11`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.AvatarURL,
		user.Bio,
		string(user.Role),
		string(user.Status),
		user.LastActivityAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to save user")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *PostgreSQLUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE id = $1`

	return scanPostgreSQLUser(querier.QueryRowContext(ctx, query, id))
}

// FindByUsername retrieves a user by exact username.
func (r *PostgreSQLUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE username = $1`

	return scanPostgreSQLUser(querier.QueryRowContext(ctx, query, username))
}

// FindByUsernameOrEmail returns every user whose username or email matches exactly.
// At most two rows come back since both columns are unique.
func (r *PostgreSQLUserRepository) FindByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + `
			  FROM users
			  WHERE username = $1 OR email = $2
			  ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, username, email)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find users")
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make([]*domain.User, 0, 2)
	for rows.Next() {
		user, err := scanPostgreSQLUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

func scanPostgreSQLUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var role, status string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.Bio,
		&role,
		&status,
		&user.LastActivityAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan user")
	}

	user.Role = domain.Role(role)
	user.Status = domain.AccountStatus(status)
	return &user, nil
}
