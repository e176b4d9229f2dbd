package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/feedback"
)

type feedbackApi struct {
	svc      *feedback.Service
	validate *validator.Validate
}

func registerFeedbackRoutes(e *echo.Echo, svc *feedback.Service, validate *validator.Validate) {
	api := feedbackApi{svc: svc, validate: validate}

	e.GET("/feedback", api.page)
	e.POST("/feedback", api.submit)
}

// Handlers

func (api *feedbackApi) page(ctx echo.Context) error {
	return render(ctx, http.StatusOK, pageFeedback, "Place Feedback", nil)
}

func (api *feedbackApi) submit(ctx echo.Context) error {
	var data feedback.Feedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Feedback")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Submit(ctx.Request().Context(), data, contextUsername(ctx)); err != nil {
		return errors.Wrap(err, "submitting feedback")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: feedback.ThankYou})
}
