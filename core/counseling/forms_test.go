package counseling

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator("id")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestGroupForm_ToggleTopic(t *testing.T) {
	f := NewGroupForm("Budi")
	require.NoError(t, f.ToggleTopic("Anti-Galau"))
	require.NoError(t, f.ToggleTopic("Self-Love"))

	assert.Equal(t, ErrTooManyTopics, f.ToggleTopic("Stop Bullying"))
	assert.Equal(t, []string{"Anti-Galau", "Self-Love"}, f.Topics, "a third topic leaves the selection unchanged")

	require.NoError(t, f.ToggleTopic("Anti-Galau"))
	require.NoError(t, f.ToggleTopic("Stop Bullying"))
	assert.Equal(t, []string{"Self-Love", "Stop Bullying"}, f.Topics)
}

func TestSubmission_Flatten(t *testing.T) {
	ind := NewIndividualForm("Budi")
	ind.Hobby = "Main bola"
	ind.ToggleReason(Reasons[0])
	ind.ToggleReason(Reasons[2])
	ind.ReasonOther = "Susah tidur"
	ind.Story = "Akhir-akhir ini sulit fokus."
	ind.Time = Times[1]
	ind.PrivacyAgreed = true

	req, err := Submission{Type: ModeIndividual, Individual: &ind}.Flatten(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), req.StudentID)
	assert.Equal(t, ModeIndividual, req.Type)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, Reasons[0]+", "+Reasons[2], req.ProblemType)
	assert.Equal(t, Times[1], req.PreferredTime)
	assert.Equal(t, ind.Story, req.Notes)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.FormData), &data))
	assert.Equal(t, "Budi", data["nama"])
	assert.Equal(t, true, data["privacyAgreed"])
	assert.Equal(t, "Main bola", data["hobi"])
	assert.Equal(t, "Susah tidur", data["reasonLainnya"])

	only := ind
	only.Reasons = nil
	req, err = Submission{Type: ModeIndividual, Individual: &only}.Flatten(3)
	require.NoError(t, err)
	assert.Empty(t, req.ProblemType)
	assert.Contains(t, req.FormData, `"reasonLainnya":"Susah tidur"`)

	grp := NewGroupForm("Budi")
	require.NoError(t, grp.ToggleTopic("Bestie Goals"))
	require.NoError(t, grp.ToggleTopic("Bye-Bye Malas"))
	grp.WhyInterested = "Ingin punya teman baru."

	req, err = Submission{Type: ModeGroup, Group: &grp, Individual: &ind}.Flatten(3)
	require.NoError(t, err)
	assert.Equal(t, ModeGroup, req.Type)
	assert.Equal(t, "Bestie Goals, Bye-Bye Malas", req.ProblemType)
	assert.Equal(t, GroupPreferredTime, req.PreferredTime)
	assert.Equal(t, grp.WhyInterested, req.Notes)
	assert.Contains(t, req.FormData, `"namaKelompok"`)
	assert.NotContains(t, req.FormData, `"hobi"`)
}

func TestSubmission_Check(t *testing.T) {
	ind := NewIndividualForm("Budi")
	grp := NewGroupForm("Budi")
	grp.Topics = []string{"Anti-Galau", "Self-Love", "Stop Bullying"}

	tests := []struct {
		name string
		sub  Submission
		want error
	}{
		{name: "privacy not agreed", sub: Submission{Type: ModeIndividual, Individual: &ind}, want: ErrPrivacyNotAgreed},
		{name: "missing answers", sub: Submission{Type: ModeGroup}, want: ErrMissingModeAnswers},
		{name: "unknown mode", sub: Submission{Type: "lain"}, want: ErrUnknownMode},
		{name: "too many topics", sub: Submission{Type: ModeGroup, Group: &grp}, want: ErrTooManyTopics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Check())
			_, err := tt.sub.Flatten(1)
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestForms_choiceValidation(t *testing.T) {
	validate := newValidator()

	ind := NewIndividualForm("Budi")
	ind.Hobby = "Membaca"
	assert.NoError(t, validate.Struct(ind))

	ind.Time = "Tengah malam"
	err := validate.Struct(ind)
	require.Error(t, err)
	verrs := err.(validator.ValidationErrors)
	assert.Equal(t, "time", verrs[0].Field())
	assert.Equal(t, "choice", verrs[0].Tag())

	ind = NewIndividualForm("Budi")
	ind.Hobby = "  "
	ind.Reasons = []string{"Bosan"}
	err = validate.Struct(ind)
	require.Error(t, err)
	assert.Len(t, err.(validator.ValidationErrors), 2)

	grp := NewGroupForm("Budi")
	grp.WhyInterested = "Seru"
	assert.NoError(t, validate.Struct(grp))
	grp.Topics = []string{"Main Game"}
	assert.Error(t, validate.Struct(grp))
}

func TestSections(t *testing.T) {
	assert.Len(t, Sections(ModeIndividual), 4)
	assert.Equal(t, "Harapan & Privasi", Sections(ModeIndividual)[3].Title)
	assert.Equal(t, "Kesepakatan Bersama", Sections(ModeGroup)[3].Title)
	assert.Empty(t, Sections("lain"))
}
