package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	authHTTP "github.com/voces/voces/internal/auth/http"
	authRepository "github.com/voces/voces/internal/auth/repository"
	authService "github.com/voces/voces/internal/auth/service"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	userRepository "github.com/voces/voces/internal/user/repository"
)

// signingSecretTimeout bounds the KMS round trip when the signing secret is keeper-encrypted.
const signingSecretTimeout = 30 * time.Second

// authComponents holds the auth and audit dependencies of the Container.
type authComponents struct {
	userRepository       authUseCase.UserRepository
	profileRepository    authUseCase.ProfileRepository
	auditEventRepository authUseCase.AuditEventRepository
	credentialHasher     authService.PasswordHasher
	signingSecret        []byte
	tokenService         authService.SessionTokenService
	auditSigner          authService.AuditSigner
	auditLedger          authUseCase.AuditLedger
	identityResolver     authUseCase.IdentityResolver
	authUseCase          authUseCase.AuthUseCase
	authHandler          *authHTTP.AuthHandler
	meHandler            *authHTTP.MeHandler
	auditLogHandler      *authHTTP.AuditLogHandler

	userRepositoryInit       sync.Once
	profileRepositoryInit    sync.Once
	auditEventRepositoryInit sync.Once
	credentialHasherInit     sync.Once
	signingSecretInit        sync.Once
	tokenServiceInit         sync.Once
	auditSignerInit          sync.Once
	auditLedgerInit          sync.Once
	identityResolverInit     sync.Once
	authUseCaseInit          sync.Once
	authHandlerInit          sync.Once
	meHandlerInit            sync.Once
	auditLogHandlerInit      sync.Once
}

// UserRepository returns the user repository for the configured driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	return lazy(c, &c.userRepositoryInit, "userRepository", &c.userRepository, c.initUserRepository)
}

// ProfileRepository returns the demographic profile repository for the configured driver.
func (c *Container) ProfileRepository() (authUseCase.ProfileRepository, error) {
	return lazy(c, &c.profileRepositoryInit, "profileRepository", &c.profileRepository, c.initProfileRepository)
}

// AuditEventRepository returns the audit event repository for the configured driver.
func (c *Container) AuditEventRepository() (authUseCase.AuditEventRepository, error) {
	return lazy(c, &c.auditEventRepositoryInit, "auditEventRepository", &c.auditEventRepository,
		c.initAuditEventRepository)
}

// CredentialHasher returns the password hasher.
func (c *Container) CredentialHasher() (authService.PasswordHasher, error) {
	return lazy(c, &c.credentialHasherInit, "credentialHasher", &c.credentialHasher, c.initCredentialHasher)
}

// SigningSecret returns the loaded signing secret, decrypted through the keeper when one
// is configured. Tokens and audit signatures both derive from it.
func (c *Container) SigningSecret() ([]byte, error) {
	return lazy(c, &c.signingSecretInit, "signingSecret", &c.signingSecret, c.initSigningSecret)
}

// TokenService returns the session token service.
func (c *Container) TokenService() (authService.SessionTokenService, error) {
	return lazy(c, &c.tokenServiceInit, "tokenService", &c.tokenService, c.initTokenService)
}

// AuditSigner returns the signer the audit ledger seals events with.
func (c *Container) AuditSigner() (authService.AuditSigner, error) {
	return lazy(c, &c.auditSignerInit, "auditSigner", &c.auditSigner, c.initAuditSigner)
}

// AuditLedger returns the audit ledger, wrapped with metrics when enabled.
func (c *Container) AuditLedger() (authUseCase.AuditLedger, error) {
	return lazy(c, &c.auditLedgerInit, "auditLedger", &c.auditLedger, c.initAuditLedger)
}

// IdentityResolver returns the session cookie resolver.
func (c *Container) IdentityResolver() (authUseCase.IdentityResolver, error) {
	return lazy(c, &c.identityResolverInit, "identityResolver", &c.identityResolver, c.initIdentityResolver)
}

// AuthUseCase returns the register/login/logout use case, wrapped with metrics when enabled.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	return lazy(c, &c.authUseCaseInit, "authUseCase", &c.authUseCase, c.initAuthUseCase)
}

// AuthHandler returns the HTTP handler for registration, login and logout.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	return lazy(c, &c.authHandlerInit, "authHandler", &c.authHandler, c.initAuthHandler)
}

// MeHandler returns the HTTP handler for the current user's data.
func (c *Container) MeHandler() (*authHTTP.MeHandler, error) {
	return lazy(c, &c.meHandlerInit, "meHandler", &c.meHandler, c.initMeHandler)
}

// AuditLogHandler returns the HTTP handler for audit log browsing.
func (c *Container) AuditLogHandler() (*authHTTP.AuditLogHandler, error) {
	return lazy(c, &c.auditLogHandlerInit, "auditLogHandler", &c.auditLogHandler, c.initAuditLogHandler)
}

func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initProfileRepository() (authUseCase.ProfileRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for profile repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLProfileRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLProfileRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditEventRepository() (authUseCase.AuditEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLAuditEventRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLAuditEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initCredentialHasher() (authService.PasswordHasher, error) {
	hasher, err := authService.NewCredentialHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential hasher: %w", err)
	}
	return hasher, nil
}

func (c *Container) initSigningSecret() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), signingSecretTimeout)
	defer cancel()

	secret, err := authService.LoadSigningSecret(ctx, c.config.AuthSigningSecret, c.config.AuthSigningSecretKeeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing secret: %w", err)
	}
	return secret, nil
}

func (c *Container) initTokenService() (authService.SessionTokenService, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, err
	}

	tokens, err := authService.NewTokenService(secret, c.config.AuthSigningAlgorithm, c.config.AuthTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return tokens, nil
}

func (c *Container) initAuditSigner() (authService.AuditSigner, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, err
	}

	signer, err := authService.NewAuditSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit signer: %w", err)
	}
	return signer, nil
}

func (c *Container) initAuditLedger() (authUseCase.AuditLedger, error) {
	repo, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for audit ledger: %w", err)
	}

	signer, err := c.AuditSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit signer for audit ledger: %w", err)
	}

	ledger := authUseCase.NewAuditLedger(repo, signer)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit ledger: %w", err)
		}
		return authUseCase.NewAuditLedgerWithMetrics(ledger, businessMetrics), nil
	}

	return ledger, nil
}

func (c *Container) initIdentityResolver() (authUseCase.IdentityResolver, error) {
	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for identity resolver: %w", err)
	}
	users, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for identity resolver: %w", err)
	}
	return authUseCase.NewIdentityResolver(tokens, users), nil
}

func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}
	users, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}
	profiles, err := c.ProfileRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile repository for auth use case: %w", err)
	}
	ledger, err := c.AuditLedger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit ledger for auth use case: %w", err)
	}
	hasher, err := c.CredentialHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential hasher for auth use case: %w", err)
	}
	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	baseUseCase := authUseCase.NewAuthUseCase(
		txManager,
		users,
		profiles,
		ledger,
		hasher,
		tokens,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		return authUseCase.NewAuthUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	useCase, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}

	cookie := authHTTP.CookieConfig{
		Secure: c.config.AuthCookieSecure,
		Domain: c.config.AuthCookieDomain,
	}
	return authHTTP.NewAuthHandler(useCase, cookie, c.Logger()), nil
}

func (c *Container) initMeHandler() (*authHTTP.MeHandler, error) {
	ledger, err := c.AuditLedger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit ledger for me handler: %w", err)
	}
	return authHTTP.NewMeHandler(ledger, c.Logger()), nil
}

func (c *Container) initAuditLogHandler() (*authHTTP.AuditLogHandler, error) {
	ledger, err := c.AuditLedger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit ledger for audit log handler: %w", err)
	}
	return authHTTP.NewAuditLogHandler(ledger, c.Logger()), nil
}
