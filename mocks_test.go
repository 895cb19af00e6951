package identity_test

import (
	"context"
	"database/sql"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAccounts implements the subset of identity.Accounts the services touch.
// The embedded interface covers the generic repository surface.
type MockAccounts struct {
	mock.Mock
	identity.Accounts
}

func (m *MockAccounts) Register(ctx context.Context, account *identity.Account) (*identity.Account, error) {
	return m.RegisterTx(ctx, nil, account)
}

func (m *MockAccounts) RegisterTx(ctx context.Context, tx bun.IDB, account *identity.Account) (*identity.Account, error) {
	args := m.Called(ctx, tx, account)
	if acc, ok := args.Get(0).(*identity.Account); ok && acc != nil {
		return acc, args.Error(1)
	}
	return account, args.Error(1)
}

func (m *MockAccounts) FindActiveByID(ctx context.Context, accountID string) (*identity.Account, error) {
	args := m.Called(ctx, accountID)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) ExistsByAccountID(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccounts) ExistsByAccountIDTx(ctx context.Context, tx bun.IDB, accountID string) (bool, error) {
	args := m.Called(ctx, tx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccounts) UpdateStatus(ctx context.Context, id uuid.UUID, status identity.AccountStatus, opts ...identity.StatusUpdateOption) (*identity.Account, error) {
	args := m.Called(ctx, id, status, opts)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) Withdraw(ctx context.Context, actor identity.ActorRef, account *identity.Account, opts ...identity.TransitionOption) (*identity.Account, error) {
	args := m.Called(ctx, actor, account, opts)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager runs transaction closures against a zero tx so the
// mocked repositories can observe calls without a database.
type MockRepositoryManager struct {
	accounts identity.Accounts
}

func (m *MockRepositoryManager) Accounts() identity.Accounts {
	return m.accounts
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// MockActivitySink records activity events.
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event identity.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockTokenService implements identity.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(id identity.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (identity.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(identity.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// testConfig is a fixed identity.Config for wiring services in tests.
type testConfig struct{}

func (c testConfig) GetSigningKey() string { return "test-signing-key" }
func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetContextKey() string { return "user" }
func (c testConfig) GetTokenExpiration() int { return 1 }
func (c testConfig) GetTokenLookup() string { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string { return "Bearer" }
func (c testConfig) GetIssuer() string { return "test-issuer" }
func (c testConfig) GetAudience() []string { return []string{"test-app"} }

// MockLifecycle implements identity.Lifecycle for controller tests.
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Signup(ctx context.Context, input identity.SignupInput) (*identity.PublicAccount, error) {
	args := m.Called(ctx, input)
	if acc, ok := args.Get(0).(*identity.PublicAccount); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLifecycle) Login(ctx context.Context, input identity.LoginInput) (*identity.PublicAccount, error) {
	args := m.Called(ctx, input)
	if acc, ok := args.Get(0).(*identity.PublicAccount); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLifecycle) Logout(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockLifecycle) Withdraw(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockLifecycle) CurrentAccount(ctx context.Context, accountID string) (*identity.PublicAccount, error) {
	args := m.Called(ctx, accountID)
	if acc, ok := args.Get(0).(*identity.PublicAccount); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}
