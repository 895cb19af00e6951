package identity_test

import (
	"context"
	"net/http"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/middleware/jwtware"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRouteAuthenticator(t *testing.T) (*identity.RouteAuthenticator, identity.TokenService) {
	t.Helper()

	tokens := identity.NewTokenServiceFromConfig(testConfig{}, nil)

	auther, err := identity.NewRouteAuthenticator(tokens, testConfig{})
	require.NoError(t, err)

	return auther, tokens
}

func TestNewRouteAuthenticatorRequiresValidator(t *testing.T) {
	_, err := identity.NewRouteAuthenticator(nil, testConfig{})
	assert.Error(t, err)
}

func TestProtectedRouteAcceptsValidToken(t *testing.T) {
	auther, tokens := newRouteAuthenticator(t)

	token, err := tokens.Generate(staticIdentity{id: "gopher01", name: "Gopher"})
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())

	var enriched context.Context
	ctx.On("SetContext", mock.Anything).Run(func(args mock.Arguments) {
		enriched = args.Get(0).(context.Context)
	}).Return()

	handler := auther.ProtectedRoute()(func(c router.Context) error {
		return c.Next()
	})

	err = handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)

	require.NotNil(t, enriched, "claims should be propagated to the request context")
	claims, ok := identity.GetClaims(enriched)
	require.True(t, ok)
	assert.Equal(t, "gopher01", claims.AccountID())
	assert.Equal(t, "Gopher", claims.DisplayName())
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	auther, _ := newRouteAuthenticator(t)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")
	ctx.On("OriginalURL").Return("/auth/withdraw")

	var payload identity.ErrorResponse
	ctx.On("JSON", http.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(identity.ErrorResponse)
	}).Return(nil)

	handler := auther.ProtectedRoute()(func(c router.Context) error {
		return c.Next()
	})

	err := handler(ctx)
	require.NoError(t, err)
	assert.False(t, ctx.NextCalled)

	assert.Equal(t, http.StatusUnauthorized, payload.Status)
	assert.Equal(t, identity.TextCodeAuthRequired, payload.TextCode)
}

func TestProtectedRouteRejectsInvalidToken(t *testing.T) {
	auther, _ := newRouteAuthenticator(t)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer not.a.valid.token")
	ctx.On("OriginalURL").Return("/user/me")

	var payload identity.ErrorResponse
	ctx.On("JSON", http.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(identity.ErrorResponse)
	}).Return(nil)

	handler := auther.ProtectedRoute()(func(c router.Context) error {
		return c.Next()
	})

	err := handler(ctx)
	require.NoError(t, err)
	assert.False(t, ctx.NextCalled)

	assert.Equal(t, identity.TextCodeTokenInvalid, payload.TextCode)
}

func TestOptionalRouteAllowsAnonymous(t *testing.T) {
	auther, _ := newRouteAuthenticator(t)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	handler := auther.OptionalRoute()(func(c router.Context) error {
		return c.Next()
	})

	err := handler(ctx)
	require.NoError(t, err)

	assert.True(t, ctx.NextCalled, "anonymous requests pass through optional routes")
	ctx.AssertNotCalled(t, "Locals", "user", mock.Anything)
}

func TestOptionalRouteIgnoresInvalidToken(t *testing.T) {
	auther, _ := newRouteAuthenticator(t)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer expired.or.garbage")

	handler := auther.OptionalRoute()(func(c router.Context) error {
		return c.Next()
	})

	err := handler(ctx)
	require.NoError(t, err)

	assert.True(t, ctx.NextCalled, "invalid tokens degrade to anonymous on optional routes")
	ctx.AssertNotCalled(t, "Locals", "user", mock.Anything)
}

func TestOptionalRouteAttachesClaimsWhenPresent(t *testing.T) {
	auther, tokens := newRouteAuthenticator(t)

	token, err := tokens.Generate(staticIdentity{id: "gopher01"})
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()

	handler := auther.OptionalRoute()(func(c router.Context) error {
		return c.Next()
	})

	err = handler(ctx)
	require.NoError(t, err)

	assert.True(t, ctx.NextCalled)
	ctx.AssertCalled(t, "Locals", "user", mock.Anything)
}

func TestValidationListenersRunOnSuccess(t *testing.T) {
	auther, tokens := newRouteAuthenticator(t)

	var seen []string
	auther.WithValidationListeners(func(ctx router.Context, claims jwtware.AuthClaims) error {
		seen = append(seen, claims.AccountID())
		return nil
	})

	token, err := tokens.Generate(staticIdentity{id: "gopher01"})
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()

	handler := auther.ProtectedRoute()(func(c router.Context) error {
		return c.Next()
	})

	err = handler(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gopher01"}, seen)
}

func TestWriteErrorMapsStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		textCode string
	}{
		{
			name:     "duplicate account",
			err:      identity.ErrDuplicateAccountID,
			status:   http.StatusConflict,
			textCode: identity.TextCodeDuplicateAccount,
		},
		{
			name:     "invalid credentials",
			err:      identity.ErrInvalidCredentials,
			status:   http.StatusUnauthorized,
			textCode: identity.TextCodeInvalidCreds,
		},
		{
			name:     "account not found",
			err:      identity.ErrAccountNotFound,
			status:   http.StatusNotFound,
			textCode: identity.TextCodeAccountNotFound,
		},
		{
			name:     "password policy",
			err:      identity.ErrPasswordPolicy,
			status:   http.StatusBadRequest,
			textCode: identity.TextCodePasswordPolicy,
		},
		{
			name:   "unexpected error",
			err:    assert.AnError,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := router.NewMockContext()

			var payload identity.ErrorResponse
			ctx.On("JSON", tt.status, mock.Anything).Run(func(args mock.Arguments) {
				payload = args.Get(1).(identity.ErrorResponse)
			}).Return(nil)

			err := identity.WriteError(ctx, tt.err)
			require.NoError(t, err)

			assert.Equal(t, tt.status, payload.Status)
			assert.Equal(t, tt.textCode, payload.TextCode)
			assert.NotEmpty(t, payload.Message)
		})
	}
}
