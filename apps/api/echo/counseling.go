package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/services/metrics"
)

const (
	msgRequestSent   = "Permohonan Terkirim!"
	msgRequestFailed = "Terjadi kesalahan saat mengirim permohonan."
)

type counselingApi struct {
	*Server
}

func registerCounselingAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := counselingApi{s}

	cg := g.Group("/counseling", authed...)
	cg.GET("/form", api.form)
	cg.POST("", api.submit)
}

func (api *counselingApi) form(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counseling.Options(sess.User.Name))
}

func (api *counselingApi) submit(ctx echo.Context) error {
	failWith(ctx, msgRequestFailed)

	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data counseling.Submission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}

	req, err := api.CounselingSvc.Submit(ctx.Request().Context(), sess.User.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting counseling request")
	}
	api.Metrics.Submission(metrics.KindCounseling)

	return ctx.JSON(http.StatusCreated, RequestResponse{Message: msgRequestSent, Request: req})
}

type RequestResponse struct {
	Message string             `json:"message"`
	Request counseling.Request `json:"request"`
}
