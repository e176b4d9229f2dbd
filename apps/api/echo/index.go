package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/devindex"
)

type indexApi struct {
	svc     *devindex.Service
	metrics *Metrics
}

func registerIndexRoutes(e *echo.Echo, svc *devindex.Service, metrics *Metrics) {
	api := indexApi{svc: svc, metrics: metrics}

	e.GET("/", api.page)
	e.GET("/devindex", api.page)
	e.GET("/indexcontent", api.content)
}

func (api *indexApi) page(ctx echo.Context) error {
	return render(ctx, http.StatusOK, pageDevIndex, "Home", nil)
}

func (api *indexApi) content(ctx echo.Context) error {
	doc, err := api.svc.Index(ctx.Request().Context(), contextUsername(ctx))
	if err != nil {
		var parseErr *devindex.ParseError
		if errors.As(err, &parseErr) {
			api.metrics.observeTransform("parse_error")
		} else {
			api.metrics.observeTransform("source_error")
		}
		return errors.Wrap(err, "building index")
	}
	api.metrics.observeTransform("ok")
	return ctx.JSON(http.StatusOK, doc)
}
