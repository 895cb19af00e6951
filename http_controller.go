package identity

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the JSON account endpoints. Join, login, logout,
// and health are public; withdraw and the current-account lookup require a
// valid bearer token.
func RegisterAuthRoutes[T any](app router.Router[T], auther *RouteAuthenticator, opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	protected := auther.ProtectedRoute()

	app.Post(controller.Routes.Join, controller.Join).
		SetName("auth.join")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("auth.login")

	app.Post(controller.Routes.Logout, controller.Logout).
		SetName("auth.logout")

	app.Delete(controller.Routes.Withdraw, controller.Withdraw, protected).
		SetName("auth.withdraw")

	app.Get(controller.Routes.Me, controller.Me, protected).
		SetName("user.me")

	app.Get(controller.Routes.Health, controller.Health).
		SetName("health")
}

type AuthControllerRoutes struct {
	Join     string
	Login    string
	Logout   string
	Withdraw string
	Me       string
	Health   string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Lifecycle    Lifecycle
	ContextKey   string
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ContextKey:   "user",
		ErrorHandler: WriteError,
		Routes: &AuthControllerRoutes{
			Join:     "/auth/join",
			Login:    "/auth/login",
			Logout:   "/auth/logout",
			Withdraw: "/auth/withdraw",
			Me:       "/user/me",
			Health:   "/health",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Lifecycle == nil {
		panic("Missing Lifecycle in auth controller...")
	}

	return c
}

// WithLogger overrides the controller logger.
func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// JoinRequest payload
type JoinRequest struct {
	AccountID       string `form:"account_id" json:"account_id"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	DisplayName     string `form:"display_name" json:"display_name"`
	BirthDate       string `form:"birth_date" json:"birth_date"`
}

// Validate will run validation rules
func (r JoinRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccountID, validation.Required, validation.Length(4, 50), is.Alphanumeric),
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.BirthDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Password, validation.Required),
		// Equality with Password is checked by the lifecycle so the mismatch
		// surfaces with its own text code.
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

func (a *AuthController) Join(ctx router.Context) error {
	payload := new(JoinRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("Join parse payload: %v", err)
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("Join validate payload: %v", err)
		return a.ErrorHandler(ctx, invalidPayload(err))
	}

	if a.Debug {
		a.Logger.Debug("Join payload: %s", print.MaybePrettyJSON(payload))
	}

	account, err := a.Lifecycle.Signup(ctx.Context(), SignupInput{
		AccountID:       payload.AccountID,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
		DisplayName:     payload.DisplayName,
		BirthDate:       payload.BirthDate,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, account)
}

// LoginRequest payload
type LoginRequest struct {
	AccountID string `form:"account_id" json:"account_id"`
	Password  string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccountID, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("Login parse payload: %v", err)
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("Login validate payload: %v", err)
		return a.ErrorHandler(ctx, invalidPayload(err))
	}

	account, err := a.Lifecycle.Login(ctx.Context(), LoginInput{
		AccountID: payload.AccountID,
		Password:  payload.Password,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, account)
}

func (a *AuthController) Logout(ctx router.Context) error {
	a.Lifecycle.Logout(ctx.Context())
	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (a *AuthController) Withdraw(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrAuthenticationRequired)
	}

	if err := a.Lifecycle.Withdraw(ctx.Context(), claims.AccountID()); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "account withdrawn",
	})
}

func (a *AuthController) Me(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrAuthenticationRequired)
	}

	account, err := a.Lifecycle.CurrentAccount(ctx.Context(), claims.AccountID())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, account)
}

func (a *AuthController) Health(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func badPayload(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse request payload").
		WithCode(goerrors.CodeBadRequest)
}

func invalidPayload(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid request payload").
		WithCode(goerrors.CodeBadRequest)
}
