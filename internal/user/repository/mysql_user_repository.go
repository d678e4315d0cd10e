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

const mysqlUserColumns = `id, username, email, password_hash, first_name, last_name, avatar_url, bio,
	role, status, last_activity_at, created_at, updated_at`

// MySQLUserRepository implements user persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQL user repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// Create inserts a new user. A duplicate entry on username or email becomes ErrUserAlreadyExists.
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO users (` + mysqlUserColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Save overwrites the mutable columns of an existing user. MySQL reports zero affected rows
// when nothing changed, so a missing user is detected with a follow-up lookup.
func (r *MySQLUserRepository) Save(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users
			  SET email = ?,
				  password_hash = ?,
				  first_name = ?,
				  last_name = ?,
				  avatar_url = ?,
				  bio = ?,
				  role = ?,
				  status = ?,
				  last_activity_at = ?,
				  updated_at = ?
			  WHERE id = ?`

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
		id,
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
		if _, err := r.FindByID(ctx, user.ID); err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *MySQLUserRepository) FindByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE id = ?`

	return scanMySQLUser(querier.QueryRowContext(ctx, query, id))
}

// FindByUsername retrieves a user by exact username.
func (r *MySQLUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE username = ?`

	return scanMySQLUser(querier.QueryRowContext(ctx, query, username))
}

// FindByUsernameOrEmail returns every user whose username or email matches.
func (r *MySQLUserRepository) FindByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + `
			  FROM users
			  WHERE username = ? OR email = ?
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
		user, err := scanMySQLUser(rows)
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

func scanMySQLUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var idBytes []byte
	var role, status string

	err := row.Scan(
		&idBytes,
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

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	user.Role = domain.Role(role)
	user.Status = domain.AccountStatus(status)
	return &user, nil
}
