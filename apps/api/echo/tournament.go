package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/tournament"
)

// Application is accepted with this message.
const applicationSubmitted = "Application Submitted"

type (
	tournamentApi struct {
		svc      tournament.ServiceInterface
		validate *validator.Validate
	}

	tournamentsResponse struct {
		Tournaments []tournament.Tournament `json:"tournaments"`
	}

	roundsResponse struct {
		Rounds int `json:"rounds"`
	}
)

func registerTournamentRoutes(e *echo.Echo, auth echo.MiddlewareFunc, svc tournament.ServiceInterface, validate *validator.Validate) {
	api := tournamentApi{svc: svc, validate: validate}

	e.GET("/tournaments", api.list)
	e.GET("/tournament/create", api.createPage, auth)
	e.POST("/tournament", api.create, auth)

	g := e.Group("/tournament/:id")
	g.GET("", api.page)
	g.GET("/content", api.details)
	g.GET("/entries", api.entries)
	g.GET("/rounds", api.rounds)
	g.GET("/missions", api.missions)
	g.GET("/categories", api.categories)
	g.POST("", api.apply, auth)
	g.POST("/rounds", api.setRounds, auth)
	g.POST("/missions", api.setMissions, auth)
	g.POST("/categories", api.setCategories, auth)
}

// Handlers

func (api *tournamentApi) list(ctx echo.Context) error {
	ts, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing tournaments")
	}
	return ctx.JSON(http.StatusOK, tournamentsResponse{Tournaments: ts})
}

func (api *tournamentApi) create(ctx echo.Context) error {
	var data tournament.NewTournament
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTournament")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data, contextUsername(ctx))
	if err != nil {
		return errors.Wrap(err, "creating tournament")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *tournamentApi) createPage(ctx echo.Context) error {
	return render(ctx, http.StatusOK, pageCreateTournament, "Create a tournament", nil)
}

func (api *tournamentApi) page(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, pageTournament, t.Name, t)
}

func (api *tournamentApi) details(ctx echo.Context) error {
	details, err := api.svc.Details(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *tournamentApi) entries(ctx echo.Context) error {
	unames, err := api.svc.Entries(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, unames)
}

// apply registers the logged in user in the tournament named by the `tournament` field.
func (api *tournamentApi) apply(ctx echo.Context) error {
	var data tournament.Application
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Application")
	}
	if data.Tournament == "" {
		data.Tournament = ctx.Param("id")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Register(ctx.Request().Context(), data.Tournament, contextUsername(ctx)); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: applicationSubmitted})
}

func (api *tournamentApi) rounds(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roundsResponse{Rounds: t.Rounds})
}

func (api *tournamentApi) setRounds(ctx echo.Context) error {
	var data tournament.RoundsUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RoundsUpdate")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	t, err := api.svc.SetRounds(ctx.Request().Context(), ctx.Param("id"), contextUsername(ctx), data)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Tournament %s has %d rounds", t.Name, t.Rounds)
	return ctx.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (api *tournamentApi) missions(ctx echo.Context) error {
	missions, err := api.svc.Missions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, missions)
}

func (api *tournamentApi) setMissions(ctx echo.Context) error {
	var data tournament.MissionsUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MissionsUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.SetMissions(ctx.Request().Context(), ctx.Param("id"), contextUsername(ctx), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Missions set: " + tournament.MissionsText(data.Missions)})
}

func (api *tournamentApi) categories(ctx echo.Context) error {
	cats, err := api.svc.ScoreCategories(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *tournamentApi) setCategories(ctx echo.Context) error {
	var data tournament.CategoriesUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CategoriesUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.SetScoreCategories(ctx.Request().Context(), ctx.Param("id"), contextUsername(ctx), data); err != nil {
		return err
	}
	msg := "Score categories set: " + tournament.CategoryNames(data.Categories)
	return ctx.JSON(http.StatusOK, messageResponse{Message: msg})
}
