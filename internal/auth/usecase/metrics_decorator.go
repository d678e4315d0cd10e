package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	apperrors "github.com/voces/voces/internal/errors"
	"github.com/voces/voces/internal/metrics"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Register records metrics for registration attempts.
func (a *authUseCaseWithMetrics) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*userDomain.User, error) {
	start := time.Now()
	user, err := a.next.Register(ctx, input)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "auth", "register", status)
	a.metrics.RecordDuration(ctx, "auth", "register", time.Since(start), status)

	return user, err
}

// Login records metrics for login attempts. Rejected credentials are counted apart from
// internal failures.
func (a *authUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "auth", "login", status)
	a.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), status)

	return output, err
}

// Logout records metrics for logout requests.
func (a *authUseCaseWithMetrics) Logout(ctx context.Context, input *authDomain.LogoutInput) error {
	start := time.Now()
	err := a.next.Logout(ctx, input)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "auth", "logout", status)
	a.metrics.RecordDuration(ctx, "auth", "logout", time.Since(start), status)

	return err
}

// auditLedgerWithMetrics decorates AuditLedger with metrics instrumentation.
type auditLedgerWithMetrics struct {
	next    AuditLedger
	metrics metrics.BusinessMetrics
}

// NewAuditLedgerWithMetrics wraps an AuditLedger with metrics recording.
func NewAuditLedgerWithMetrics(ledger AuditLedger, m metrics.BusinessMetrics) AuditLedger {
	return &auditLedgerWithMetrics{
		next:    ledger,
		metrics: m,
	}
}

// Record counts persisted events by kind in addition to the operation metrics.
func (a *auditLedgerWithMetrics) Record(
	ctx context.Context,
	event *authDomain.AuditEvent,
) (*authDomain.AuditEvent, error) {
	start := time.Now()
	recorded, err := a.next.Record(ctx, event)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "audit", "audit_record", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_record", time.Since(start), status)
	if err == nil {
		a.metrics.RecordAuditEvent(ctx, string(recorded.Kind), recorded.Success)
	}

	return recorded, err
}

func (a *auditLedgerWithMetrics) QueryByActor(
	ctx context.Context,
	actorID uuid.UUID,
	kind *authDomain.EventKind,
	limit int,
) ([]*authDomain.AuditEvent, error) {
	start := time.Now()
	events, err := a.next.QueryByActor(ctx, actorID, kind, limit)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "audit", "audit_query_by_actor", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_query_by_actor", time.Since(start), status)

	return events, err
}

func (a *auditLedgerWithMetrics) List(ctx context.Context, offset, limit int) ([]*authDomain.AuditEvent, error) {
	start := time.Now()
	events, err := a.next.List(ctx, offset, limit)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "audit", "audit_list", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_list", time.Since(start), status)

	return events, err
}

func (a *auditLedgerWithMetrics) Get(ctx context.Context, id uuid.UUID) (*authDomain.AuditEvent, error) {
	start := time.Now()
	event, err := a.next.Get(ctx, id)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "audit", "audit_get", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_get", time.Since(start), status)

	return event, err
}

func (a *auditLedgerWithMetrics) Verify(
	ctx context.Context,
	since, until time.Time,
) (*VerificationReport, error) {
	start := time.Now()
	report, err := a.next.Verify(ctx, since, until)

	status := outcome(err)
	a.metrics.RecordOperation(ctx, "audit", "audit_verify", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_verify", time.Since(start), status)

	return report, err
}

// outcome maps an error to the status label. Expected rejections are not errors of the service.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, apperrors.ErrInvalidCredentials),
		apperrors.Is(err, apperrors.ErrConflict),
		apperrors.Is(err, apperrors.ErrInvalidInput),
		apperrors.Is(err, apperrors.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}
