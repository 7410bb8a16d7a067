package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/jurnalspendapol-design/rubikon-mobile/apps/api/echo"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/report"
)

func validReport() report.Form {
	form := report.NewForm("Budi", "8A")
	form.Types = []string{report.TypeSafety}
	form.Involved = "Orang tidak dikenal"
	form.TimePlace = "Jumat, parkiran"
	form.Chronology = "Sepeda saya hilang."
	form.Expectations = []string{report.Expectations[0]}
	form.Contact = "08123"
	return form
}

func TestReportAPI_Form(t *testing.T) {
	fx := setup(t)
	token := login(t, fx.srv, studentEmail, password)

	rec := do(fx.srv, http.MethodGet, "/v1/reports/form", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReportFormResponse
	unmarchall(t, rec, &resp)
	assert.Equal(t, "Budi", resp.Form.ReporterName)
	assert.Len(t, resp.Steps, 4)
	assert.Equal(t, report.StepIdentity, resp.Wizard.Step)
	assert.Equal(t, 0, resp.Wizard.Progress)
	assert.Equal(t, []int{1, 2, 4}, resp.Wizard.Visible)
	assert.Equal(t, report.Types, resp.Types)
}

func TestReportAPI_Wizard(t *testing.T) {
	fx := setup(t)
	token := login(t, fx.srv, studentEmail, password)

	group := validReport()
	group.Types = []string{report.TypeGroupConflict}

	tests := []httpTest{
		{
			name:     "identity missing",
			path:     "/v1/reports/wizard/next",
			body:     marchallObj(t, WizardRequest{Step: report.StepIdentity, Form: report.NewForm("", "")}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"namaPelapor":"wajib diisi","kelas":"wajib diisi"}`),
		},
		{
			name:     "details skip the group step",
			path:     "/v1/reports/wizard/next",
			body:     marchallObj(t, WizardRequest{Step: report.StepDetails, Form: validReport()}),
			wantCode: http.StatusOK,
			extra:    report.StepFollowUp,
		},
		{
			name:     "group conflicts show the group step",
			path:     "/v1/reports/wizard/next",
			body:     marchallObj(t, WizardRequest{Step: report.StepDetails, Form: group}),
			wantCode: http.StatusOK,
			extra:    report.StepGroup,
		},
		{
			name:     "back over the hidden step",
			path:     "/v1/reports/wizard/prev",
			body:     marchallObj(t, WizardRequest{Step: report.StepFollowUp, Form: validReport()}),
			wantCode: http.StatusOK,
			extra:    report.StepDetails,
		},
		{
			name:     "before the first step",
			path:     "/v1/reports/wizard/prev",
			body:     marchallObj(t, WizardRequest{Step: report.StepIdentity, Form: validReport()}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"already at the first step"}`),
		},
		{
			name:     "unknown step",
			path:     "/v1/reports/wizard/next",
			body:     marchallObj(t, WizardRequest{Step: 9, Form: validReport()}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"unknown step"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(fx.srv, http.MethodPost, tt.path, token, tt.body)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var resp WizardResponse
			unmarchall(t, rec, &resp)
			assert.Equal(t, tt.extra, resp.Step)
		})
	}

	t.Run("progress", func(t *testing.T) {
		rec := do(fx.srv, http.MethodPost, "/v1/reports/wizard/next", token,
			marchallObj(t, WizardRequest{Step: report.StepGroup, Form: func() report.Form {
				f := group
				f.GroupName = "Geng Lapangan"
				f.Cause = "Rebutan lapangan"
				f.Duration = report.Durations[0]
				f.PeaceAttempt = report.PeaceAttempts[1]
				return f
			}()}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp WizardResponse
		unmarchall(t, rec, &resp)
		assert.Equal(t, report.StepFollowUp, resp.Step)
		assert.True(t, resp.Last)
		assert.Equal(t, 100, resp.Progress)
		assert.Equal(t, []int{1, 2, 3, 4}, resp.Visible)
	})
}

func TestReportAPI_Submit(t *testing.T) {
	fx := setup(t)
	student := login(t, fx.srv, studentEmail, password)
	counselor := login(t, fx.srv, counselorEmail, password)

	t.Run("incomplete", func(t *testing.T) {
		form := validReport()
		form.Contact = ""
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"kontak":"wajib diisi"}`)}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodPost, "/v1/reports", student, marchallObj(t, form)))
	})

	var id int64
	t.Run("anonymous", func(t *testing.T) {
		form := validReport()
		form.IsAnonymous = true
		rec := do(fx.srv, http.MethodPost, "/v1/reports", student, marchallObj(t, form))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ReportResponse
		unmarchall(t, rec, &resp)
		assert.Equal(t, "Laporan Diterima", resp.Message)
		assert.Equal(t, report.AnonymousName, resp.Report.StudentName)
		assert.Zero(t, resp.Report.StudentID)
		id = resp.Report.ID
	})

	t.Run("students cannot list", func(t *testing.T) {
		rec := do(fx.srv, http.MethodGet, "/v1/admin/reports", student)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("dashboard hides the reporter", func(t *testing.T) {
		rec := do(fx.srv, http.MethodGet, "/v1/admin/reports", counselor)
		require.Equal(t, http.StatusOK, rec.Code)
		var reps []report.Report
		unmarchall(t, rec, &reps)
		require.Len(t, reps, 1)
		assert.Equal(t, report.AnonymousName, reps[0].StudentName)
		assert.True(t, reps[0].CanMarkRead)
	})

	t.Run("mark read once", func(t *testing.T) {
		path := fmt.Sprintf("/v1/admin/reports/%d/read", id)
		rec := do(fx.srv, http.MethodPost, path, counselor)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var rep report.Report
		unmarchall(t, rec, &rep)
		assert.Equal(t, report.StatusRead, rep.Status)
		assert.False(t, rep.CanMarkRead)

		rec = do(fx.srv, http.MethodPost, path, counselor)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = do(fx.srv, http.MethodPost, "/v1/admin/reports/999/read", counselor)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
