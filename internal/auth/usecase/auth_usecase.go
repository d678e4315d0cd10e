package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	authService "github.com/voces/voces/internal/auth/service"
	"github.com/voces/voces/internal/database"
	apperrors "github.com/voces/voces/internal/errors"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// authUseCase implements AuthUseCase.
type authUseCase struct {
	txManager database.TxManager
	users     UserRepository
	profiles  ProfileRepository
	ledger    AuditLedger
	hasher    authService.PasswordHasher
	tokens    authService.SessionTokenService
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthUseCase creates a new AuthUseCase. Logins report the token lifetime as the
// session cookie Max-Age.
func NewAuthUseCase(
	txManager database.TxManager,
	users UserRepository,
	profiles ProfileRepository,
	ledger AuditLedger,
	hasher authService.PasswordHasher,
	tokens authService.SessionTokenService,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		txManager: txManager,
		users:     users,
		profiles:  profiles,
		ledger:    ledger,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		now:       time.Now,
	}
}

func (a *authUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*userDomain.User, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, a.rejectInvalidRegistration(ctx, input, err)
	}

	existing, err := a.users.FindByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, a.systemError(ctx, input.Meta, "registration", err, map[string]any{
			"username": input.Username,
		})
	}
	if fields := conflictFields(existing, input); len(fields) > 0 {
		return nil, a.rejectRegistration(ctx, input, fields)
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return nil, a.systemError(ctx, input.Meta, "registration", err, map[string]any{
			"username": input.Username,
		})
	}

	now := a.now().UTC()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         userDomain.RoleUser,
		Status:       userDomain.StatusPendingVerification,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.users.Create(ctx, user); err != nil {
			return err
		}
		if _, err := a.profiles.CreateEmptyFor(ctx, user.ID); err != nil {
			return err
		}
		event := authDomain.NewAuditEvent(authDomain.EventRegistrationSucceeded, "user registered", input.Meta).
			WithActor(user.ID).
			WithDetails(map[string]any{
				"username": user.Username,
				"email":    user.Email,
			})
		_, err := a.ledger.Record(ctx, event)
		return err
	})
	if err != nil {
		// Another registration claimed the username or email between the check and the insert.
		if apperrors.Is(err, userDomain.ErrUserAlreadyExists) {
			return nil, a.rejectRegistration(ctx, input, a.racedFields(ctx, input))
		}
		return nil, a.systemError(ctx, input.Meta, "registration", err, map[string]any{
			"username": input.Username,
		})
	}

	return user, nil
}

func (a *authUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	if err := input.Validate(); err != nil {
		invalid := input.InvalidFields()
		if auditErr := a.recordFailedLogin(ctx, input, authDomain.ReasonInvalidInput, invalid); auditErr != nil {
			return nil, auditErr
		}
		return nil, err
	}

	user, err := a.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if !apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, a.systemError(ctx, input.Meta, "login", err, map[string]any{
				"attempted_username": input.Username,
			})
		}
		// Spend the same hashing time as for a real user.
		a.hasher.Verify(input.Password, a.hasher.DummyHash())
		return nil, a.rejectLogin(ctx, input, authDomain.ReasonUserNotFound)
	}

	if !a.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, a.rejectLogin(ctx, input, authDomain.ReasonInvalidPassword)
	}
	if !user.CanAuthenticate() {
		return nil, a.rejectLogin(ctx, input, authDomain.ReasonAccountDisabled)
	}

	token, expiresAt, err := a.tokens.Issue(user.Username, map[string]any{
		authDomain.ClaimUserID: user.ID.String(),
		authDomain.ClaimRole:   string(user.Role),
	}, 0)
	if err != nil {
		return nil, a.systemError(ctx, input.Meta, "login", err, map[string]any{
			"attempted_username": input.Username,
		})
	}

	var details map[string]any
	if a.hasher.NeedsRehash(user.PasswordHash) {
		if upgraded, err := a.hasher.Hash(input.Password); err != nil {
			a.logger.Warn("failed to upgrade legacy password hash",
				slog.String("user_id", user.ID.String()),
				slog.Any("error", err),
			)
		} else {
			user.PasswordHash = upgraded
			details = map[string]any{"hash_upgraded": true}
		}
	}

	now := a.now().UTC()
	user.LastActivityAt = &now
	user.UpdatedAt = now

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.users.Save(ctx, user); err != nil {
			return err
		}
		event := authDomain.NewAuditEvent(authDomain.EventLogin, "user logged in", input.Meta).
			WithActor(user.ID).
			WithDetails(details)
		_, err := a.ledger.Record(ctx, event)
		return err
	})
	if err != nil {
		return nil, a.systemError(ctx, input.Meta, "login", err, map[string]any{
			"attempted_username": input.Username,
		})
	}

	return &authDomain.LoginOutput{
		User:         user,
		Token:        token,
		ExpiresAt:    expiresAt,
		CookieMaxAge: a.tokens.DefaultTTL(),
	}, nil
}

func (a *authUseCase) Logout(ctx context.Context, input *authDomain.LogoutInput) error {
	user, ok := input.Identity.User()
	if !ok {
		return nil
	}

	event := authDomain.NewAuditEvent(authDomain.EventLogout, "user logged out", input.Meta).
		WithActor(user.ID)
	if _, err := a.ledger.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record logout")
	}
	return nil
}

// rejectLogin records the failed attempt and returns the uniform credential error.
func (a *authUseCase) rejectLogin(ctx context.Context, input *authDomain.LoginInput, reason string) error {
	if err := a.recordFailedLogin(ctx, input, reason, nil); err != nil {
		return err
	}
	return apperrors.ErrInvalidCredentials
}

func (a *authUseCase) recordFailedLogin(
	ctx context.Context,
	input *authDomain.LoginInput,
	reason string,
	invalidFields []string,
) error {
	details := map[string]any{
		"attempted_username": input.Username,
		"reason":             reason,
	}
	message := "invalid credentials"
	if len(invalidFields) > 0 {
		details["invalid_fields"] = invalidFields
		message = "invalid input"
	}
	event := authDomain.NewAuditEvent(authDomain.EventFailedLoginAttempt, "login failed", input.Meta).
		WithDetails(details).
		Failed(message)
	if _, err := a.ledger.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record failed login")
	}
	return nil
}

// rejectInvalidRegistration records a registration refused by the field rules and returns
// cause. Only field names are stored, never the submitted password.
func (a *authUseCase) rejectInvalidRegistration(
	ctx context.Context,
	input *authDomain.RegisterInput,
	cause error,
) error {
	event := authDomain.NewAuditEvent(
		authDomain.EventRegistrationSucceeded,
		"registration rejected: invalid input",
		input.Meta,
	).
		WithDetails(map[string]any{
			"username":       input.Username,
			"email":          input.Email,
			"reason":         authDomain.ReasonInvalidInput,
			"invalid_fields": input.InvalidFields(),
		}).
		Failed("invalid input")
	if _, err := a.ledger.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record rejected registration")
	}
	return cause
}

// rejectRegistration records the conflicting attempt and returns the conflict.
func (a *authUseCase) rejectRegistration(
	ctx context.Context,
	input *authDomain.RegisterInput,
	fields []string,
) error {
	event := authDomain.NewAuditEvent(
		authDomain.EventRegistrationSucceeded,
		"registration rejected: username or email already registered",
		input.Meta,
	).
		WithDetails(map[string]any{
			"username":           input.Username,
			"email":              input.Email,
			"conflicting_fields": fields,
		}).
		Failed("already registered")
	if _, err := a.ledger.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record rejected registration")
	}
	return &authDomain.ConflictError{Fields: fields}
}

// systemError records a best-effort SystemError event outside any transaction and returns
// cause wrapped for the caller. When the audit write fails too, only the log keeps it.
func (a *authUseCase) systemError(
	ctx context.Context,
	meta authDomain.RequestMeta,
	operation string,
	cause error,
	details map[string]any,
) error {
	event := authDomain.NewAuditEvent(authDomain.EventSystemError, operation+" failed", meta).
		WithDetails(details).
		Failed(cause.Error())
	if _, err := a.ledger.Record(ctx, event); err != nil {
		a.logger.Error("failed to record system error audit event",
			slog.String("operation", operation),
			slog.String("request_id", meta.RequestID),
			slog.Any("cause", cause),
			slog.Any("error", err),
		)
	}
	return apperrors.Wrapf(cause, "%s failed", operation)
}

func (a *authUseCase) racedFields(ctx context.Context, input *authDomain.RegisterInput) []string {
	existing, err := a.users.FindByUsernameOrEmail(ctx, input.Username, input.Email)
	if err == nil {
		if fields := conflictFields(existing, input); len(fields) > 0 {
			return fields
		}
	}
	return []string{authDomain.FieldUsername, authDomain.FieldEmail}
}

// conflictFields names the registration fields already taken by existing users. The store
// matches byte for byte, so the rows it returns are compared the same way.
func conflictFields(existing []*userDomain.User, input *authDomain.RegisterInput) []string {
	var usernameTaken, emailTaken bool
	for _, u := range existing {
		if u.Username == input.Username {
			usernameTaken = true
		}
		if u.Email == input.Email {
			emailTaken = true
		}
	}

	var fields []string
	if usernameTaken {
		fields = append(fields, authDomain.FieldUsername)
	}
	if emailTaken {
		fields = append(fields, authDomain.FieldEmail)
	}
	return fields
}
