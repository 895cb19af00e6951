package identity

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-identity/middleware/jwtware"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// ErrorResponse is the JSON body every failed request gets.
type ErrorResponse struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// RouteAuthenticator wires the token validator into per-request middleware.
// It never touches storage: requests carry everything needed to authenticate.
type RouteAuthenticator struct {
	cfg                 Config
	validator           TokenValidator
	validationListeners []ValidationListener
	Logger              Logger
	ErrorHandler        func(c router.Context, err error) error
}

// NewRouteAuthenticator builds the HTTP middleware factory for the given validator.
func NewRouteAuthenticator(validator TokenValidator, cfg Config) (*RouteAuthenticator, error) {
	if validator == nil {
		return nil, goerrors.New("token validator is required", goerrors.CategoryInternal)
	}

	a := &RouteAuthenticator{
		cfg:       cfg,
		validator: validator,
		Logger:    defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// WithLogger overrides the logger.
func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// WithValidationListeners appends listeners run after each successful validation.
func (a *RouteAuthenticator) WithValidationListeners(listeners ...ValidationListener) *RouteAuthenticator {
	a.validationListeners = append(a.validationListeners, listeners...)
	return a
}

// ProtectedRoute rejects requests without a valid bearer token.
func (a *RouteAuthenticator) ProtectedRoute() router.MiddlewareFunc {
	return jwtware.New(a.middlewareConfig(false))
}

// OptionalRoute decodes the bearer token when present and lets everything else
// through as anonymous. Handlers decide whether an identity is required.
func (a *RouteAuthenticator) OptionalRoute() router.MiddlewareFunc {
	return jwtware.New(a.middlewareConfig(true))
}

func (a *RouteAuthenticator) middlewareConfig(optional bool) jwtware.Config {
	return jwtware.Config{
		Optional:            optional,
		ContextKey:          a.cfg.GetContextKey(),
		TokenLookup:         a.cfg.GetTokenLookup(),
		AuthScheme:          a.cfg.GetAuthScheme(),
		TokenValidator:      tokenValidatorAdapter{validator: a.validator},
		ContextEnricher:     ContextEnricherAdapter,
		ValidationListeners: a.validationListeners,
		ErrorHandler: func(ctx router.Context, err error) error {
			richErr := ErrTokenInvalid
			if err != nil && err.Error() == jwtware.ErrJWTMissingOrMalformed.Error() {
				richErr = ErrAuthenticationRequired
			}

			a.Logger.Info("Authentication rejected %s: %s", ctx.OriginalURL(), richErr.TextCode)

			return a.ErrorHandler(ctx, richErr)
		},
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Info("Middleware error handler %s (%s): %s", richErr.Message, richErr.Category, print.MaybePrettyJSON(richErr.Metadata))

	return WriteError(c, richErr)
}

// tokenValidatorAdapter bridges the identity validator to the jwtware interface.
type tokenValidatorAdapter struct {
	validator TokenValidator
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// WriteError renders err as the canonical JSON error payload, mapping the
// structured code to the HTTP status.
func WriteError(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return c.JSON(status, ErrorResponse{
		Status:   status,
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	})
}
