package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/database"
	apperrors "github.com/voces/voces/internal/errors"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// NewMySQLAuditEventRepository creates a new MySQL audit event repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}

// Create inserts event. Nil details and a nil actor are stored as NULL.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *authDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	detailsJSON, err := marshalDetails(event.Details)
	if err != nil {
		return err
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	var actorID any
	if event.ActorID != nil {
		actorBytes, err := event.ActorID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit event actor_id")
		}
		actorID = actorBytes
	}

	query := `INSERT INTO audit_events (` + auditEventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		string(event.Kind),
		event.Description,
		actorID,
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
func (m *MySQLAuditEventRepository) Get(ctx context.Context, eventID uuid.UUID) (*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := eventID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event id")
	}

	query := `SELECT ` + auditEventColumns + ` FROM audit_events WHERE id = ?`

	event, err := scanMySQLAuditEvent(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrAuditEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// List retrieves events across all actors, newest first.
func (m *MySQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + auditEventColumns + `
			  FROM audit_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return collectAuditEvents(rows, scanMySQLAuditEvent)
}

// ListByActor retrieves events attributed to actorID, optionally of a single kind, newest first.
func (m *MySQLAuditEventRepository) ListByActor(
	ctx context.Context,
	actorID uuid.UUID,
	kind *authDomain.EventKind,
	limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	actor, err := actorID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal actor id")
	}

	var rows *sql.Rows
	if kind == nil {
		query := `SELECT ` + auditEventColumns + `
				  FROM audit_events
				  WHERE actor_id = ?
				  ORDER BY created_at DESC, id DESC
				  LIMIT ?`
		rows, err = querier.QueryContext(ctx, query, actor, limit)
	} else {
		query := `SELECT ` + auditEventColumns + `
				  FROM audit_events
				  WHERE actor_id = ? AND kind = ?
				  ORDER BY created_at DESC, id DESC
				  LIMIT ?`
		rows, err = querier.QueryContext(ctx, query, actor, string(*kind), limit)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events by actor")
	}
	return collectAuditEvents(rows, scanMySQLAuditEvent)
}

func scanMySQLAuditEvent(row rowScanner) (*authDomain.AuditEvent, error) {
	var event authDomain.AuditEvent
	var idBytes, actorBytes, detailsJSON []byte
	var kind string

	err := row.Scan(
		&idBytes,
		&kind,
		&event.Description,
		&actorBytes,
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

	if err := event.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
	}
	if actorBytes != nil {
		var actorID uuid.UUID
		if err := actorID.UnmarshalBinary(actorBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event actor_id")
		}
		event.ActorID = &actorID
	}

	event.Kind = authDomain.EventKind(kind)
	if event.Details, err = unmarshalDetails(detailsJSON); err != nil {
		return nil, err
	}
	return &event, nil
}
