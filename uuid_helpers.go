package identity

import (
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// accountUUID derives a stable uuid from the external account id so repeated
// imports of the same account map to the same primary key.
func accountUUID(accountID string) uuid.UUID {
	if id, err := hashid.NewUUID(accountID); err == nil {
		return id
	}
	return uuid.New()
}
