package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	identity "github.com/goliatone/go-identity"
	"github.com/uptrace/bun"
)

type mngr struct {
	db       *bun.DB
	accounts identity.Accounts
}

// NewRepositoryManager builds the default repository manager for applications
// that wire their own bun.DB.
func NewRepositoryManager(db *bun.DB, opts ...identity.AccountsOption) identity.RepositoryManager {
	return &mngr{
		db:       db,
		accounts: identity.NewAccountsRepository(db, opts...),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Accounts() identity.Accounts {
	return m.accounts
}
