package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the account's lifecycle status
type AccountStatus = string

const (
	// AccountStatusActive is the status of a usable account
	AccountStatusActive AccountStatus = "active"
	// AccountStatusWithdrawn is the terminal soft-delete status
	AccountStatusWithdrawn AccountStatus = "withdrawn"
)

// Account is the account model. The external AccountID is the identifier
// users log in with; the uuid primary key is internal. Withdrawn rows are kept
// so the unique account_id can never be reused.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AccountID     string        `bun:"account_id,notnull,unique" json:"account_id,omitempty"`
	PasswordHash  string        `bun:"password_hash,notnull" json:"-"`
	DisplayName   string        `bun:"display_name" json:"display_name,omitempty"`
	BirthDate     string        `bun:"birth_date" json:"birth_date,omitempty"`
	Status        AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	WithdrawnAt   *time.Time    `bun:"withdrawn_at,nullzero" json:"withdrawn_at,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus defaults the status for records created before the column existed.
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
}

// IsActive reports whether the account can authenticate.
func (a *Account) IsActive() bool {
	a.EnsureStatus()
	return a.Status == AccountStatusActive
}

// IsWithdrawn reports whether the account has been soft deleted.
func (a *Account) IsWithdrawn() bool {
	return a.Status == AccountStatusWithdrawn
}

// PublicAccount is the serializable view of an account. It never carries the
// password hash.
type PublicAccount struct {
	AccountID   string     `json:"account_id"`
	DisplayName string     `json:"display_name,omitempty"`
	BirthDate   string     `json:"birth_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	AccessToken string     `json:"access_token,omitempty"`
}

// PublicView builds the public representation, optionally attaching a token.
func (a *Account) PublicView(token string) *PublicAccount {
	return &PublicAccount{
		AccountID:   a.AccountID,
		DisplayName: a.DisplayName,
		BirthDate:   a.BirthDate,
		CreatedAt:   a.CreatedAt,
		AccessToken: token,
	}
}
