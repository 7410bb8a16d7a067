package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/report"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/wizard"
	"github.com/jurnalspendapol-design/rubikon-mobile/services/metrics"
)

const (
	msgReportSent   = "Laporan Diterima"
	msgReportFailed = "Gagal mengirim laporan."
)

type reportApi struct {
	*Server
}

func registerReportAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := reportApi{s}

	rg := g.Group("/reports", authed...)
	rg.GET("/form", api.form)
	rg.POST("/wizard/next", api.next)
	rg.POST("/wizard/prev", api.prev)
	rg.POST("", api.submit)
}

func (api *reportApi) form(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	form := report.NewForm(sess.User.Name, sess.User.Class.String)
	pos, err := report.Wizard.First(form)
	if err != nil {
		return errors.Wrap(err, "positioning report wizard")
	}

	steps := make([]StepInfo, 0, report.Wizard.Len())
	for n := 1; n <= report.Wizard.Len(); n++ {
		step, _ := report.Wizard.Step(n)
		steps = append(steps, StepInfo{Number: n, Key: step.Key, Title: step.Title})
	}

	return ctx.JSON(http.StatusOK, ReportFormResponse{
		Form:          form,
		Steps:         steps,
		Wizard:        newWizardResponse(form, pos),
		Types:         report.Types,
		Durations:     report.Durations,
		PeaceAttempts: report.PeaceAttempts,
		Expectations:  report.Expectations,
	})
}

func (api *reportApi) next(ctx echo.Context) error {
	return api.move(ctx, report.Wizard.Next)
}

func (api *reportApi) prev(ctx echo.Context) error {
	return api.move(ctx, report.Wizard.Prev)
}

func (api *reportApi) move(ctx echo.Context, to func(report.Form, int) (wizard.Position, error)) error {
	var data WizardRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WizardRequest")
	}
	data.Form.Clean()

	pos, err := to(data.Form, data.Step)
	if err != nil {
		return errors.Wrap(err, "moving through report wizard")
	}
	return ctx.JSON(http.StatusOK, newWizardResponse(data.Form, pos))
}

func (api *reportApi) submit(ctx echo.Context) error {
	failWith(ctx, msgReportFailed)

	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var form report.Form
	if err = ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to Form")
	}

	rep, err := api.ReportSvc.Submit(ctx.Request().Context(), sess.User.ID, form)
	if err != nil {
		return errors.Wrap(err, "submitting report")
	}
	api.Metrics.Submission(metrics.KindReport)

	return ctx.JSON(http.StatusCreated, ReportResponse{Message: msgReportSent, Report: rep})
}

func newWizardResponse(form report.Form, pos wizard.Position) WizardResponse {
	return WizardResponse{
		Position: pos,
		Progress: pos.Percent,
		Visible:  report.Wizard.Visible(form),
	}
}

type (
	StepInfo struct {
		Number int    `json:"number"`
		Key    string `json:"key"`
		Title  string `json:"title"`
	}

	WizardRequest struct {
		Step int         `json:"step"`
		Form report.Form `json:"form"`
	}

	WizardResponse struct {
		wizard.Position
		Progress int   `json:"progress"`
		Visible  []int `json:"visible"`
	}

	ReportFormResponse struct {
		Form          report.Form    `json:"form"`
		Steps         []StepInfo     `json:"steps"`
		Wizard        WizardResponse `json:"wizard"`
		Types         []string       `json:"types"`
		Durations     []string       `json:"durations"`
		PeaceAttempts []string       `json:"peace_attempts"`
		Expectations  []string       `json:"expectations"`
	}

	ReportResponse struct {
		Message string        `json:"message"`
		Report  report.Report `json:"report"`
	}
)
