package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/voces/voces/internal/auth/domain"
	authService "github.com/voces/voces/internal/auth/service"
	apperrors "github.com/voces/voces/internal/errors"
	customValidation "github.com/voces/voces/internal/validation"
)

// Query bounds for ledger reads.
const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 500
)

// auditLedger implements AuditLedger on top of an append-only repository.
type auditLedger struct {
	repo   AuditEventRepository
	signer authService.AuditSigner
	now    func() time.Time
}

// NewAuditLedger creates a new AuditLedger that signs every event it records.
func NewAuditLedger(repo AuditEventRepository, signer authService.AuditSigner) AuditLedger {
	return &auditLedger{
		repo:   repo,
		signer: signer,
		now:    time.Now,
	}
}

func (l *auditLedger) Record(ctx context.Context, event *authDomain.AuditEvent) (*authDomain.AuditEvent, error) {
	if event == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit event is required")
	}

	err := validation.ValidateStruct(event,
		validation.Field(&event.Kind, validation.Required, validation.By(validKind)),
		validation.Field(&event.Description, validation.Required, customValidation.NotBlank),
	)
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.Must(uuid.NewV7())
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.now()
	}
	// Both databases keep microseconds; the signature must cover what is stored.
	event.CreatedAt = event.CreatedAt.UTC().Truncate(time.Microsecond)

	signature, err := l.signer.Sign(event)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign audit event")
	}
	event.Signature = signature

	if err := l.repo.Create(ctx, event); err != nil {
		return nil, apperrors.Wrap(err, "failed to record audit event")
	}
	return event, nil
}

func (l *auditLedger) QueryByActor(
	ctx context.Context,
	actorID uuid.UUID,
	kind *authDomain.EventKind,
	limit int,
) ([]*authDomain.AuditEvent, error) {
	if kind != nil && !kind.IsValid() {
		return nil, authDomain.ErrInvalidEventKind
	}

	events, err := l.repo.ListByActor(ctx, actorID, kind, ClampLimit(limit))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query audit events")
	}
	return events, nil
}

func (l *auditLedger) List(ctx context.Context, offset, limit int) ([]*authDomain.AuditEvent, error) {
	if offset < 0 {
		offset = 0
	}

	events, err := l.repo.List(ctx, offset, ClampLimit(limit))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

func (l *auditLedger) Get(ctx context.Context, id uuid.UUID) (*authDomain.AuditEvent, error) {
	return l.repo.Get(ctx, id)
}

// Verify checks the signature of every event created in [since, until). A zero since is
// open and a zero until means now. Pages are read newest first; events recorded meanwhile
// push older rows onto the next page, where the repeats are skipped.
func (l *auditLedger) Verify(ctx context.Context, since, until time.Time) (*VerificationReport, error) {
	if until.IsZero() {
		until = l.now()
	}
	if !since.IsZero() && !until.After(since) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "until must be after since")
	}

	report := &VerificationReport{InvalidEvents: make([]uuid.UUID, 0)}
	seen := make(map[uuid.UUID]struct{})

	for offset := 0; ; offset += MaxQueryLimit {
		events, err := l.repo.List(ctx, offset, MaxQueryLimit)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit events")
		}

		for _, event := range events {
			if _, ok := seen[event.ID]; ok {
				continue
			}
			seen[event.ID] = struct{}{}

			if !event.CreatedAt.Before(until) {
				continue
			}
			if !since.IsZero() && event.CreatedAt.Before(since) {
				return report, nil
			}
			report.check(l.signer, event)
		}

		if len(events) < MaxQueryLimit {
			return report, nil
		}
	}
}

// ClampLimit maps a requested page size into [1, MaxQueryLimit], defaulting to DefaultQueryLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}

func validKind(value any) error {
	kind, _ := value.(authDomain.EventKind)
	if !kind.IsValid() {
		return validation.NewError("validation_event_kind", "must be a known event kind")
	}
	return nil
}

// VerificationReport summarizes an integrity check of the ledger. Unsigned events count
// as invalid because every recorded event is signed.
type VerificationReport struct {
	TotalChecked  int64       `json:"total_checked"`
	SignedCount   int64       `json:"signed_count"`
	UnsignedCount int64       `json:"unsigned_count"`
	ValidCount    int64       `json:"valid_count"`
	InvalidCount  int64       `json:"invalid_count"`
	InvalidEvents []uuid.UUID `json:"invalid_events"`
}

// Passed reports whether every checked event matched its signature.
func (r *VerificationReport) Passed() bool {
	return r.InvalidCount == 0
}

func (r *VerificationReport) check(signer authService.AuditSigner, event *authDomain.AuditEvent) {
	r.TotalChecked++
	if len(event.Signature) == 0 {
		r.UnsignedCount++
	} else {
		r.SignedCount++
	}

	if signer.Verify(event) != nil {
		r.InvalidCount++
		r.InvalidEvents = append(r.InvalidEvents, event.ID)
		return
	}
	r.ValidCount++
}
