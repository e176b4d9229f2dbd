package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/user"
)

const loginTitle = "Log in"

type (
	userApi struct {
		svc      user.ServiceInterface
		sessions *sessionManager
		validate *validator.Validate
	}

	loginRequest struct {
		user.Credentials
		Next string `json:"next" form:"next"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)

func registerUserRoutes(e *echo.Echo, svc user.ServiceInterface, sessions *sessionManager, validate *validator.Validate) {
	api := userApi{svc: svc, sessions: sessions, validate: validate}

	e.GET("/login", api.loginPage)
	e.POST("/login", api.login)
	e.POST("/logout", api.logout)
	e.POST("/signup", api.signup)
}

// Handlers

func (api *userApi) loginPage(ctx echo.Context) error {
	return render(ctx, http.StatusOK, pageLogin, loginTitle, loginPage{Next: safeNext(ctx.Request().Host, ctx.QueryParam("next"))})
}

// login authenticates JSON clients and login form submissions. The form is redirected to `next`,
// or shown again with the error.
func (api *userApi) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	isJSON := wantsJSON(ctx.Request())

	if err := data.Validate(api.validate); err != nil {
		if isJSON {
			return err
		}
		return api.loginFailed(ctx, data, "Please enter your username and password")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Credentials)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrAuthenticationFailed:
			if isJSON {
				return errAuthenticationFailed
			}
			return api.loginFailed(ctx, data, errAuthenticationFailed.Message.(string))
		case user.ErrAccountDeactivated:
			if isJSON {
				return errAccountDeactivated
			}
			return api.loginFailed(ctx, data, "Your account has been deactivated")
		default:
			return errors.Wrap(err, "authenticating")
		}
	}

	if err = api.sessions.login(ctx, usr); err != nil {
		return errors.Wrap(err, "starting session")
	}
	if isJSON {
		return ctx.JSON(http.StatusOK, messageResponse{Message: "Logged in as " + usr.Username})
	}
	return ctx.Redirect(http.StatusSeeOther, safeNext(ctx.Request().Host, data.Next))
}

func (api *userApi) loginFailed(ctx echo.Context, data loginRequest, msg string) error {
	page := loginPage{Error: msg, Next: safeNext(ctx.Request().Host, data.Next), Username: data.Username}
	return render(ctx, http.StatusUnauthorized, pageLogin, loginTitle, page)
}

func (api *userApi) logout(ctx echo.Context) error {
	api.sessions.logout(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}
