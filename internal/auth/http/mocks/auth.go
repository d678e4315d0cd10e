// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/voces/voces/internal/auth/domain"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// MockAuthUseCase is a mock implementation of AuthUseCase for testing.
type MockAuthUseCase struct {
	mock.Mock
}

// Register mocks the Register method of AuthUseCase.
func (m *MockAuthUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// Login mocks the Login method of AuthUseCase.
func (m *MockAuthUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

// Logout mocks the Logout method of AuthUseCase.
func (m *MockAuthUseCase) Logout(ctx context.Context, input *authDomain.LogoutInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// MockAuditLedger is a mock implementation of AuditLedger for testing.
type MockAuditLedger struct {
	mock.Mock
}

// Record mocks the Record method of AuditLedger.
func (m *MockAuditLedger) Record(
	ctx context.Context,
	event *authDomain.AuditEvent,
) (*authDomain.AuditEvent, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuditEvent), args.Error(1)
}

// QueryByActor mocks the QueryByActor method of AuditLedger.
func (m *MockAuditLedger) QueryByActor(
	ctx context.Context,
	actorID uuid.UUID,
	kind *authDomain.EventKind,
	limit int,
) ([]*authDomain.AuditEvent, error) {
	args := m.Called(ctx, actorID, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditEvent), args.Error(1)
}

// List mocks the List method of AuditLedger.
func (m *MockAuditLedger) List(ctx context.Context, offset, limit int) ([]*authDomain.AuditEvent, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditEvent), args.Error(1)
}

// Get mocks the Get method of AuditLedger.
func (m *MockAuditLedger) Get(ctx context.Context, id uuid.UUID) (*authDomain.AuditEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuditEvent), args.Error(1)
}

// Verify mocks the Verify method of AuditLedger.
func (m *MockAuditLedger) Verify(
	ctx context.Context,
	since, until time.Time,
) (*authUseCase.VerificationReport, error) {
	args := m.Called(ctx, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authUseCase.VerificationReport), args.Error(1)
}

// MockIdentityResolver is a mock implementation of IdentityResolver for testing.
type MockIdentityResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method of IdentityResolver.
func (m *MockIdentityResolver) Resolve(ctx context.Context, cookieValue string) (authDomain.Identity, error) {
	args := m.Called(ctx, cookieValue)
	return args.Get(0).(authDomain.Identity), args.Error(1)
}
