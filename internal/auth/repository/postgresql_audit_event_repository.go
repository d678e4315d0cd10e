// Package repository provides PostgreSQL and MySQL persistence for the audit ledger.
// The repositories are append-only: they expose no update or delete.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/database"
	apperrors "github.com/voces/voces/internal/errors"
)

const auditEventColumns = `id, kind, description, actor_id, details, ip_address, user_agent, request_id,
	success, error_message, created_at, signature`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgreSQLAuditEventRepository implements AuditEvent persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL audit event repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}

// Create inserts event. Nil details are stored as NULL.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *authDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := marshalDetails(event.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (` + auditEventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Kind),
		event.Description,
		nullUUID(event.ActorID),
		detailsJSON,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		event.Success,
		event.ErrorMessage,
		event.CreatedAt,
		event.Signature,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// Get retrieves one event by id.
func (p *PostgreSQLAuditEventRepository) Get(ctx context.Context, id uuid.UUID) (*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + auditEventColumns + ` FROM audit_events WHERE id = $1`

	event, err := scanPostgreSQLAuditEvent(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrAuditEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// List retrieves events across all actors, newest first.
func (p *PostgreSQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + auditEventColumns + `
			  FROM audit_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return collectAuditEvents(rows, scanPostgreSQLAuditEvent)
}

// ListByActor retrieves events attributed to actorID, optionally of a single kind, newest first.
func (p *PostgreSQLAuditEventRepository) ListByActor(
	ctx context.Context,
	actorID uuid.UUID,
	kind *authDomain.EventKind,
	limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	var rows *sql.Rows
	var err error
	if kind == nil {
		query := `SELECT ` + auditEventColumns + `
				  FROM audit_events
				  WHERE actor_id = $1
				  ORDER BY created_at DESC, id DESC
				  LIMIT $2`
		rows, err = querier.QueryContext(ctx, query, actorID, limit)
	} else {
		query := `SELECT ` + auditEventColumns + `
				  FROM audit_events
				  WHERE actor_id = $1 AND kind = $2
				  ORDER BY created_at DESC, id DESC
				  LIMIT $3`
		rows, err = querier.QueryContext(ctx, query, actorID, string(*kind), limit)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events by actor")
	}
	return collectAuditEvents(rows, scanPostgreSQLAuditEvent)
}

func scanPostgreSQLAuditEvent(row rowScanner) (*authDomain.AuditEvent, error) {
	var event authDomain.AuditEvent
	var kind string
	var actorID uuid.NullUUID
	var detailsJSON []byte

	err := row.Scan(
		&event.ID,
		&kind,
		&event.Description,
		&actorID,
		&detailsJSON,
		&event.IPAddress,
		&event.UserAgent,
		&event.RequestID,
		&event.Success,
		&event.ErrorMessage,
		&event.CreatedAt,
		&event.Signature,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan audit event")
	}

	event.Kind = authDomain.EventKind(kind)
	if actorID.Valid {
		event.ActorID = &actorID.UUID
	}
	if event.Details, err = unmarshalDetails(detailsJSON); err != nil {
		return nil, err
	}
	return &event, nil
}

func collectAuditEvents(
	rows *sql.Rows,
	scan func(rowScanner) (*authDomain.AuditEvent, error),
) ([]*authDomain.AuditEvent, error) {
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	events := make([]*authDomain.AuditEvent, 0)
	for rows.Next() {
		event, err := scan(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// marshalDetails returns an untyped nil for nil details so both drivers write NULL.
func marshalDetails(details map[string]any) (any, error) {
	if details == nil {
		return nil, nil
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event details")
	}
	return detailsJSON, nil
}

func unmarshalDetails(detailsJSON []byte) (map[string]any, error) {
	if detailsJSON == nil {
		return nil, nil
	}
	var details map[string]any
	if err := json.Unmarshal(detailsJSON, &details); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit event details")
	}
	return details, nil
}
