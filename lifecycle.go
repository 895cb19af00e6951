package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// SignupInput carries the attributes needed to create an account.
type SignupInput struct {
	AccountID       string
	Password        string
	ConfirmPassword string
	DisplayName     string
	BirthDate       string
}

// LoginInput carries the credentials for an authentication attempt.
type LoginInput struct {
	AccountID string
	Password  string
}

// Lifecycle exposes the account lifecycle operations: signup, login, logout,
// withdrawal, and current-account lookup.
type Lifecycle interface {
	Signup(ctx context.Context, input SignupInput) (*PublicAccount, error)
	Login(ctx context.Context, input LoginInput) (*PublicAccount, error)
	Logout(ctx context.Context)
	Withdraw(ctx context.Context, accountID string) error
	CurrentAccount(ctx context.Context, accountID string) (*PublicAccount, error)
}

// LifecycleManager implements Lifecycle on top of a RepositoryManager and a
// TokenService. It holds no per-request state; tokens carry the session.
type LifecycleManager struct {
	repo         RepositoryManager
	tokens       TokenService
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

var _ Lifecycle = (*LifecycleManager)(nil)

// NewLifecycle creates a LifecycleManager using a TokenService built from cfg.
func NewLifecycle(repo RepositoryManager, cfg Config) *LifecycleManager {
	return &LifecycleManager{
		repo:         repo,
		tokens:       NewTokenServiceFromConfig(cfg, nil),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

// WithLogger overrides the logger.
func (s *LifecycleManager) WithLogger(logger Logger) *LifecycleManager {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token service.
func (s *LifecycleManager) WithTokenService(tokens TokenService) *LifecycleManager {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// WithActivitySink sets the sink used for audit events.
func (s *LifecycleManager) WithActivitySink(sink ActivitySink) *LifecycleManager {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *LifecycleManager) WithClock(clock func() time.Time) *LifecycleManager {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Signup validates the payload, reserves the account id, and creates an
// active account. Password mismatch and policy checks run before any storage
// access. No token is issued; the caller must log in.
func (s *LifecycleManager) Signup(ctx context.Context, input SignupInput) (*PublicAccount, error) {
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if err := ValidatePasswordPolicy(input.Password); err != nil {
		return nil, err
	}

	var created *Account
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := s.repo.Accounts().ExistsByAccountIDTx(ctx, tx, input.AccountID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
		}

		if exists {
			return ErrDuplicateAccountID
		}

		hash, err := HashPassword(input.Password)
		if err != nil {
			return err
		}

		record := &Account{
			AccountID:    strings.TrimSpace(input.AccountID),
			PasswordHash: hash,
			DisplayName:  input.DisplayName,
			BirthDate:    input.BirthDate,
			Status:       AccountStatusActive,
		}

		created, err = s.repo.Accounts().RegisterTx(ctx, tx, record)
		if err != nil {
			// The unique index is the backstop for racing signups.
			if isUniqueViolation(err) {
				return ErrDuplicateAccountID
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "account creation failed")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignup,
		Actor:     ActorRef{ID: created.AccountID, Type: "account"},
		AccountID: created.AccountID,
		ToStatus:  created.Status,
	})

	return created.PublicView(""), nil
}

// Login verifies the credentials against the active account and issues a
// bearer token. Unknown ids and wrong passwords both come back as
// ErrInvalidCredentials.
func (s *LifecycleManager) Login(ctx context.Context, input LoginInput) (*PublicAccount, error) {
	account, err := s.repo.Accounts().FindActiveByID(ctx, input.AccountID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.recordLoginFailure(ctx, input.AccountID, "unknown account")
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	if err := ComparePasswordAndHash(input.Password, account.PasswordHash); err != nil {
		s.recordLoginFailure(ctx, input.AccountID, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(NewIdentityFromAccount(account))
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue token")
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     ActorRef{ID: account.AccountID, Type: "account"},
		AccountID: account.AccountID,
	})

	return account.PublicView(token), nil
}

// Logout is a no-op at this layer: tokens are stateless and remain valid until
// they expire. The hook exists so boundaries have a single place to clear
// client state.
func (s *LifecycleManager) Logout(ctx context.Context) {
	s.logger.Debug("Logout requested, nothing to invalidate server side")
}

// Withdraw soft deletes the active account by moving it to the withdrawn
// state. A second withdrawal finds no active account and reports not found.
func (s *LifecycleManager) Withdraw(ctx context.Context, accountID string) error {
	account, err := s.repo.Accounts().FindActiveByID(ctx, accountID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	actor := ActorRef{ID: account.AccountID, Type: "account"}
	if _, err := s.repo.Accounts().Withdraw(ctx, actor, account,
		WithTransitionReason("withdrawal requested"),
		WithWithdrawalTime(s.now()),
	); err != nil {
		return err
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventWithdrawal,
		Actor:      actor,
		AccountID:  account.AccountID,
		FromStatus: AccountStatusActive,
		ToStatus:   AccountStatusWithdrawn,
	})

	return nil
}

// CurrentAccount resolves the public view for an authenticated account id.
func (s *LifecycleManager) CurrentAccount(ctx context.Context, accountID string) (*PublicAccount, error) {
	account, err := s.repo.Accounts().FindActiveByID(ctx, accountID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	return account.PublicView(""), nil
}

func (s *LifecycleManager) recordLoginFailure(ctx context.Context, accountID, reason string) {
	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		Actor:     ActorRef{Type: "anonymous"},
		AccountID: accountID,
		Metadata: map[string]any{
			"reason": reason,
		},
	})
}

func (s *LifecycleManager) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	sink := normalizeActivitySink(s.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("lifecycle activity sink error: %v", err)
	}
}

// isUniqueViolation walks the error chain because repository errors arrive
// wrapped, with the driver message buried in the cause.
func isUniqueViolation(err error) bool {
	for err != nil {
		msg := err.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value") {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
