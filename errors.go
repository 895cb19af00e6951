package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodePasswordMismatch = "CREDENTIAL_MISMATCH"
	TextCodePasswordPolicy   = "PASSWORD_POLICY_VIOLATION"
	TextCodeDuplicateAccount = "DUPLICATE_ACCOUNT_ID"
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	TextCodeTokenInvalid     = "TOKEN_INVALID"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeAuthRequired     = "AUTHENTICATION_REQUIRED"
)

// ErrPasswordMismatch is returned when the confirmation password does not match.
var ErrPasswordMismatch = goerrors.New("password and confirmation do not match", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordPolicy is returned when a password fails the composition policy.
var ErrPasswordPolicy = goerrors.New("password does not satisfy the password policy", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordPolicy).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateAccountID is returned when the account id is already taken,
// including ids held by withdrawn accounts.
var ErrDuplicateAccountID = goerrors.New("account id is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials covers both unknown account ids and wrong passwords so
// login failures are indistinguishable to callers.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is returned when no active account matches the id.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenInvalid is the uniform result for every token validation failure.
var ErrTokenInvalid = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthenticationRequired is returned by protected routes with no resolved identity.
var ErrAuthenticationRequired = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the hasher-level mismatch error. The
// lifecycle service collapses it into ErrInvalidCredentials before it leaves
// the package.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)
