package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/content"
)

const msgJournalSaved = "Jurnal tersimpan"

type contentApi struct {
	*Server
}

func registerContentAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := contentApi{s}

	cg := g.Group("", authed...)
	cg.GET("/home", api.home)
	cg.GET("/contacts", api.contacts)
	cg.GET("/info", api.info)
	cg.GET("/self-help", api.selfHelp)
	cg.PUT("/self-help/journal", api.saveJournal)
	cg.GET("/modules", api.modules)
	cg.GET("/modules/:id", api.module)
	cg.GET("/quiz", api.quiz)
	cg.POST("/quiz/result", api.quizResult)
}

func (api *contentApi) home(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.Portal.Home(sess.User.Name, sess.User.IsCounselor()))
}

func (api *contentApi) contacts(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.Portal.Contacts)
}

func (api *contentApi) info(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.Portal.Info)
}

func (api *contentApi) selfHelp(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	journal, err := api.Sessions.Journal(ctx.Request().Context(), sess.User.ID)
	if err != nil {
		return errors.Wrap(err, "reading journal")
	}
	return ctx.JSON(http.StatusOK, SelfHelpResponse{SelfHelp: api.Portal.SelfHelp, Journal: journal})
}

func (api *contentApi) saveJournal(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data JournalRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JournalRequest")
	}
	if err = api.Sessions.SaveJournal(ctx.Request().Context(), sess.User.ID, data.Text); err != nil {
		return errors.Wrap(err, "saving journal")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgJournalSaved})
}

func (api *contentApi) modules(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.ModuleSvc.List(ctx.Request().Context()))
}

func (api *contentApi) module(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	m, err := api.ModuleSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting module")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *contentApi) quiz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.Quiz)
}

func (api *contentApi) quizResult(ctx echo.Context) error {
	var data QuizRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizRequest")
	}
	res, err := api.Quiz.Score(data.Answers)
	if err != nil {
		return errors.Wrap(err, "scoring quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

type (
	SelfHelpResponse struct {
		content.SelfHelp
		Journal string `json:"journal"`
	}

	JournalRequest struct {
		Text string `json:"text"`
	}

	QuizRequest struct {
		Answers []int `json:"answers"`
	}
)

