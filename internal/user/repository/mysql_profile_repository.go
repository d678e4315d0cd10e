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

// MySQLProfileRepository stores demographic profiles in MySQL using BINARY(16) ids.
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQL profile repository.
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{db: db}
}

// CreateEmptyFor inserts the default empty profile for userID and returns it.
func (r *MySQLProfileRepository) CreateEmptyFor(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.DemographicProfile, error) {
	querier := database.GetTx(ctx, r.db)
	profile := domain.NewEmptyProfile(userID, time.Now().UTC())

	id, err := profile.ID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal profile id")
	}
	uid, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO demographic_profiles (id, user_id, country, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, uid, profile.Country, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.ErrProfileAlreadyExists
		}
		return nil, apperrors.Wrap(err, "failed to create demographic profile")
	}
	return profile, nil
}
