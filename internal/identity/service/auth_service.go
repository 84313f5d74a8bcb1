package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	identitydomain "github.com/ShodmonX/taskflow-backend/internal/identity/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
	"github.com/ShodmonX/taskflow-backend/internal/security"
	userdomain "github.com/ShodmonX/taskflow-backend/internal/user/domain"
)

// Metric operations and outcomes recorded by the auth service.
const (
	opRegister = "register"
	opLogin    = "login"
	opRefresh  = "refresh"
	opLogout   = "logout"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeError   = "error"
)

// AuthResult holds the tokens handed back to the client. RefreshToken is
// empty after Register; the caller logs in to start a session.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
}

// CredentialRepo is the minimal credential repository needed by the auth service.
type CredentialRepo interface {
	GetByUserID(ctx context.Context, userID string) (*identitydomain.Credential, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// AccountCreator writes a user and its credential together.
type AccountCreator interface {
	CreateAccount(ctx context.Context, u *userdomain.User, c *identitydomain.Credential) error
}

// SessionManager is the refresh session lifecycle.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Rotate(ctx context.Context, raw string) (string, string, error)
	Revoke(ctx context.Context, raw string) error
}

// OutcomeRecorder counts auth outcomes.
type OutcomeRecorder interface {
	Record(ctx context.Context, operation, outcome string)
}

// AuthService implements register, login, refresh, logout and me.
type AuthService struct {
	users       UserRepo
	credentials CredentialRepo
	accounts    AccountCreator
	sessions    SessionManager
	hasher      *security.Hasher
	tokens      *security.TokenCodec
	audit       audit.AuditLogger
	metrics     OutcomeRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger and metrics may be nil.
func NewAuthService(
	users UserRepo,
	credentials CredentialRepo,
	accounts AccountCreator,
	sessions SessionManager,
	hasher *security.Hasher,
	tokens *security.TokenCodec,
	auditLogger audit.AuditLogger,
	metrics OutcomeRecorder,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       users,
		credentials: credentials,
		accounts:    accounts,
		sessions:    sessions,
		hasher:      hasher,
		tokens:      tokens,
		audit:       auditLogger,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a user with a local credential and returns an access token.
// Email and username must both be unused.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	username = strings.TrimSpace(username)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(ctx, opRegister, err)
	}
	if existing != nil {
		return nil, s.fail(ctx, opRegister, userdomain.ErrEmailTaken)
	}
	existing, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.fail(ctx, opRegister, err)
	}
	if existing != nil {
		return nil, s.fail(ctx, opRegister, userdomain.ErrUsernameTaken)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.fail(ctx, opRegister, fmt.Errorf("auth: hash password: %w", err))
	}
	now := s.now().UTC()
	user := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  username,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cred := &identitydomain.Credential{UserID: user.ID, PasswordHash: hashed, UpdatedAt: now}
	if err := s.accounts.CreateAccount(ctx, user, cred); err != nil {
		return nil, s.fail(ctx, opRegister, err)
	}

	access, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.fail(ctx, opRegister, fmt.Errorf("auth: issue access token: %w", err))
	}
	s.logEvent(ctx, user.ID, audit.ActionRegister, audit.ResourceUser, "")
	s.record(ctx, opRegister, outcomeSuccess)
	return &AuthResult{AccessToken: access, UserID: user.ID}, nil
}

// Login checks email and password, starts a refresh session and returns both
// tokens. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(ctx, opLogin, err)
	}
	if user == nil {
		s.logEvent(ctx, "", audit.ActionLoginFailure, audit.ResourceUser, audit.Metadata(map[string]any{"reason": "unknown_email"}))
		return nil, s.fail(ctx, opLogin, identitydomain.ErrInvalidCredentials)
	}
	cred, err := s.credentials.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, s.fail(ctx, opLogin, err)
	}
	if cred == nil || !s.hasher.Verify(password, cred.PasswordHash) {
		s.logEvent(ctx, user.ID, audit.ActionLoginFailure, audit.ResourceUser, audit.Metadata(map[string]any{"reason": "bad_password"}))
		return nil, s.fail(ctx, opLogin, identitydomain.ErrInvalidCredentials)
	}
	if !user.IsActive {
		s.logEvent(ctx, user.ID, audit.ActionLoginFailure, audit.ResourceUser, audit.Metadata(map[string]any{"reason": "inactive"}))
		return nil, s.fail(ctx, opLogin, identitydomain.ErrUserInactive)
	}
	if s.hasher.NeedsRehash(cred.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	access, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.fail(ctx, opLogin, fmt.Errorf("auth: issue access token: %w", err))
	}
	refresh, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, s.fail(ctx, opLogin, err)
	}
	s.logEvent(ctx, user.ID, audit.ActionLoginSuccess, audit.ResourceSession, "")
	s.record(ctx, opLogin, outcomeSuccess)
	return &AuthResult{AccessToken: access, RefreshToken: refresh, UserID: user.ID}, nil
}

// Refresh rotates the refresh session behind raw and issues a new access
// token for its owner.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*AuthResult, error) {
	if raw == "" {
		return nil, s.fail(ctx, opRefresh, identitydomain.ErrMissingRefresh)
	}
	next, userID, err := s.sessions.Rotate(ctx, raw)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthenticated {
			s.logEvent(ctx, "", audit.ActionRefreshFailure, audit.ResourceSession, "")
		}
		return nil, s.fail(ctx, opRefresh, err)
	}
	access, _, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, s.fail(ctx, opRefresh, fmt.Errorf("auth: issue access token: %w", err))
	}
	s.logEvent(ctx, userID, audit.ActionRefresh, audit.ResourceSession, "")
	s.record(ctx, opRefresh, outcomeSuccess)
	return &AuthResult{AccessToken: access, RefreshToken: next, UserID: userID}, nil
}

// Logout revokes the session behind raw. An empty raw is a no-op.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		s.record(ctx, opLogout, outcomeSuccess)
		return nil
	}
	if err := s.sessions.Revoke(ctx, raw); err != nil {
		return s.fail(ctx, opLogout, err)
	}
	s.logEvent(ctx, "", audit.ActionLogout, audit.ResourceSession, "")
	s.record(ctx, opLogout, outcomeSuccess)
	return nil
}

// Me returns the user named by a verified access token.
func (s *AuthService) Me(ctx context.Context, userID string) (*userdomain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, identitydomain.ErrUserGone
	}
	return user, nil
}

// rehash replaces a stored hash made with outdated parameters. Failure only
// costs another attempt on the next login.
func (s *AuthService) rehash(ctx context.Context, userID, password string) {
	hashed, err := s.hasher.Hash(password)
	if err == nil {
		err = s.credentials.UpdatePasswordHash(ctx, userID, hashed)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// fail records the outcome for op and returns err unchanged. Classified errors
// count as failures, everything else as errors.
func (s *AuthService) fail(ctx context.Context, op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		s.record(ctx, op, outcomeFailure)
	} else {
		s.record(ctx, op, outcomeError)
	}
	return err
}

func (s *AuthService) record(ctx context.Context, op, outcome string) {
	if s.metrics != nil {
		s.metrics.Record(ctx, op, outcome)
	}
}

func (s *AuthService) logEvent(ctx context.Context, userID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, "", userID, action, resource, metadata)
	}
}
