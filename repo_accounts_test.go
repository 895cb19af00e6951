package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type stubAccountStateMachine struct {
	lastTarget AccountStatus
	err        error
}

func (s *stubAccountStateMachine) Transition(ctx context.Context, actor ActorRef, account *Account, target AccountStatus, opts ...TransitionOption) (*Account, error) {
	s.lastTarget = target
	return account, s.err
}

func (s *stubAccountStateMachine) CurrentStatus(account *Account) AccountStatus {
	if account == nil {
		return ""
	}
	return account.Status
}

func TestAccountsWithdrawDelegatesToStateMachine(t *testing.T) {
	t.Parallel()

	stub := &stubAccountStateMachine{}
	repo := &accounts{
		stateMachine: stub,
	}

	actor := ActorRef{ID: "gopher01", Type: "account"}
	account := &Account{Status: AccountStatusActive}

	_, err := repo.Withdraw(context.Background(), actor, account)
	assert.NoError(t, err)
	assert.Equal(t, AccountStatusWithdrawn, stub.lastTarget)
}

func setupAccountsDB(t *testing.T) (*bun.DB, Accounts) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().
		Model((*Account)(nil)).
		Exec(context.Background())
	require.NoError(t, err)

	return db, NewAccountsRepository(db)
}

func registerTestAccount(t *testing.T, repo Accounts, accountID string) *Account {
	t.Helper()

	created, err := repo.Register(context.Background(), &Account{
		AccountID:    accountID,
		PasswordHash: "$2a$10$placeholderhashvalue",
		DisplayName:  "Gopher",
		BirthDate:    "1990-04-01",
	})
	require.NoError(t, err)
	return created
}

func TestAccountsRegisterAndFindActive(t *testing.T) {
	_, repo := setupAccountsDB(t)

	created := registerTestAccount(t, repo, "gopher01")
	assert.Equal(t, AccountStatusActive, created.Status)

	found, err := repo.FindActiveByID(context.Background(), "gopher01")
	require.NoError(t, err)

	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "gopher01", found.AccountID)
	assert.Equal(t, "Gopher", found.DisplayName)
}

func TestAccountsRegisterDerivesDeterministicID(t *testing.T) {
	_, repo := setupAccountsDB(t)

	created := registerTestAccount(t, repo, "gopher01")

	assert.Equal(t, accountUUID("gopher01"), created.ID)
}

func TestAccountsFindActiveByIDUnknown(t *testing.T) {
	_, repo := setupAccountsDB(t)

	_, err := repo.FindActiveByID(context.Background(), "nobody99")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestAccountsUniqueIndexRejectsDuplicates(t *testing.T) {
	_, repo := setupAccountsDB(t)

	registerTestAccount(t, repo, "gopher01")

	_, err := repo.Register(context.Background(), &Account{
		AccountID:    "gopher01",
		PasswordHash: "$2a$10$anotherplaceholderhash",
	})
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), "expected unique violation, got: %v", err)
}

func TestAccountsExistsByAccountID(t *testing.T) {
	_, repo := setupAccountsDB(t)

	exists, err := repo.ExistsByAccountID(context.Background(), "gopher01")
	require.NoError(t, err)
	assert.False(t, exists)

	registerTestAccount(t, repo, "gopher01")

	exists, err = repo.ExistsByAccountID(context.Background(), "gopher01")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountsWithdrawnRowsStayReserved(t *testing.T) {
	_, repo := setupAccountsDB(t)

	created := registerTestAccount(t, repo, "gopher01")

	now := time.Now()
	_, err := repo.UpdateStatus(context.Background(), created.ID, AccountStatusWithdrawn, WithWithdrawnAt(&now))
	require.NoError(t, err)

	// Active lookups miss withdrawn rows.
	_, err = repo.FindActiveByID(context.Background(), "gopher01")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	// The id is still taken for signup purposes.
	exists, err := repo.ExistsByAccountID(context.Background(), "gopher01")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountsWithdrawEndToEnd(t *testing.T) {
	_, repo := setupAccountsDB(t)

	created := registerTestAccount(t, repo, "gopher01")

	actor := ActorRef{ID: "gopher01", Type: "account"}
	withdrawn, err := repo.Withdraw(context.Background(), actor, created,
		WithTransitionReason("withdrawal requested"))
	require.NoError(t, err)

	assert.Equal(t, AccountStatusWithdrawn, withdrawn.Status)
	assert.NotNil(t, withdrawn.WithdrawnAt)

	// A repeated withdrawal is an idempotent no-op.
	again, err := repo.Withdraw(context.Background(), actor, withdrawn)
	require.NoError(t, err)
	assert.Equal(t, AccountStatusWithdrawn, again.Status)
	assert.Equal(t, withdrawn.WithdrawnAt, again.WithdrawnAt)
}

func TestAccountsFindActiveTrimsInput(t *testing.T) {
	_, repo := setupAccountsDB(t)

	registerTestAccount(t, repo, "gopher01")

	found, err := repo.FindActiveByID(context.Background(), "  gopher01  ")
	require.NoError(t, err)
	assert.Equal(t, "gopher01", found.AccountID)
}
