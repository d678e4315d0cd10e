package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/voces/voces/internal/database"
	apperrors "github.com/voces/voces/internal/errors"
	"github.com/voces/voces/internal/user/domain"
)

// PostgreSQLProfileRepository stores demographic profiles in PostgreSQL.
type PostgreSQLProfileRepository struct {
	db *sql.DB
}

// NewPostgreSQLProfileRepository creates a new PostgreSQL profile repository.
func NewPostgreSQLProfileRepository(db *sql.DB) *PostgreSQLProfileRepository {
	return &PostgreSQLProfileRepository{db: db}
}

// CreateEmptyFor inserts the default empty profile for userID and returns it.
func (r *PostgreSQLProfileRepository) CreateEmptyFor(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.DemographicProfile, error) {
	querier := database.GetTx(ctx, r.db)
	profile := domain.NewEmptyProfile(userID, time.Now().UTC())

	query := `INSERT INTO demographic_profiles (id, user_id, country, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.UserID,
		profile.Country,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.ErrProfileAlreadyExists
		}
		return nil, apperrors.Wrap(err, "failed to create demographic profile")
	}
	return profile, nil
}
