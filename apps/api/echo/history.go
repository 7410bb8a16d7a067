package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const msgScheduleConfirmed = "Terima kasih telah mengkonfirmasi jadwal konseling."

type historyApi struct {
	*Server
}

func registerHistoryAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := historyApi{s}

	hg := g.Group("/history", authed...)
	hg.GET("", api.query)
	hg.POST("/:id/confirm", api.confirm)
}

func (api *historyApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqs, err := api.CounselingSvc.ListForStudent(ctx.Request().Context(), sess.User.ID)
	if err != nil {
		return errors.Wrap(err, "listing history")
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *historyApi) confirm(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	req, err := api.CounselingSvc.Confirm(ctx.Request().Context(), sess.User.ID, id)
	if err != nil {
		return errors.Wrap(err, "confirming schedule")
	}
	return ctx.JSON(http.StatusOK, RequestResponse{Message: msgScheduleConfirmed, Request: req})
}
