package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/wizard"
)

func filledForm() Form {
	f := NewForm("Budi", "8A")
	f.ToggleType(TypeBullying)
	f.Involved = "Kakak kelas"
	f.TimePlace = "Senin, kantin"
	f.Chronology = "Saya didorong saat antre."
	f.ToggleExpectation(Expectations[0])
	f.Contact = "08123"
	return f
}

func TestWizard_groupStepFollowsSelection(t *testing.T) {
	f := filledForm()

	// without group conflict: 2 -> 4 and 4 -> 2
	pos, err := Wizard.Next(f, StepDetails)
	require.NoError(t, err)
	assert.Equal(t, StepFollowUp, pos.Step)
	pos, err = Wizard.Prev(f, StepFollowUp)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, pos.Step)
	assert.Equal(t, []int{1, 2, 4}, Wizard.Visible(f))

	// selecting it brings step 3 back in both directions
	f.ToggleType(TypeGroupConflict)
	pos, err = Wizard.Next(f, StepDetails)
	require.NoError(t, err)
	assert.Equal(t, StepGroup, pos.Step)
	pos, err = Wizard.Prev(f, StepFollowUp)
	require.NoError(t, err)
	assert.Equal(t, StepGroup, pos.Step)

	// deselecting before leaving step 2 skips it again
	f.ToggleType(TypeGroupConflict)
	assert.False(t, f.IsGroupConflict())
	pos, err = Wizard.Next(f, StepDetails)
	require.NoError(t, err)
	assert.Equal(t, StepFollowUp, pos.Step)
	pos, err = Wizard.Prev(f, StepFollowUp)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, pos.Step)
}

func TestWizard_readiness(t *testing.T) {
	tests := []struct {
		name      string
		edit      func(f *Form)
		step      int
		wantField string
	}{
		{name: "no incident type", step: StepDetails, edit: func(f *Form) { f.Types = nil }, wantField: "jenisPengaduan"},
		{name: "other without detail", step: StepDetails, edit: func(f *Form) { f.ToggleType(TypeOther) }, wantField: "jenisPengaduanLainnya"},
		{name: "unknown incident type", step: StepDetails, edit: func(f *Form) { f.Types = []string{"lol"} }, wantField: "jenisPengaduan"},
		{name: "no chronology", step: StepDetails, edit: func(f *Form) { f.Chronology = "" }, wantField: "kronologi"},
		{name: "no class", step: StepIdentity, edit: func(f *Form) { f.Class = "" }, wantField: "kelas"},
		{name: "no expectation", step: StepFollowUp, edit: func(f *Form) { f.Expectations = nil }, wantField: "harapan"},
		{name: "no contact", step: StepFollowUp, edit: func(f *Form) { f.Contact = "" }, wantField: "kontak"},
		{
			name: "group details missing", step: StepGroup,
			edit: func(f *Form) { f.ToggleType(TypeGroupConflict) }, wantField: "namaKelompok",
		},
		{
			name: "bad duration", step: StepGroup,
			edit: func(f *Form) {
				f.ToggleType(TypeGroupConflict)
				f.GroupName, f.Cause, f.PeaceAttempt = "Geng A", "Ejekan", "Ya"
				f.Duration = "selamanya"
			},
			wantField: "lamaMasalah",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filledForm()
			tt.edit(&f)
			_, err := Wizard.Next(f, tt.step)
			if tt.step == StepFollowUp {
				// last step: readiness is what blocks submission
				err = Wizard.Ready(f, tt.step)
			}
			require.Error(t, err)
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "want *core.ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}

	_, err := Wizard.Next(filledForm(), StepFollowUp)
	assert.Equal(t, wizard.ErrLastStep, err)
	assert.NoError(t, Wizard.Validate(filledForm()))
}

func TestForm_Compose(t *testing.T) {
	f := filledForm()
	f.Witnesses = "Rina"
	f.ToggleType(TypeOther)
	f.TypeOther = "Dipalak"

	want := "*LAPORAN PENGADUAN*\n\n" +
		"*BAGIAN 1: IDENTITAS*\nNama: Budi\nKelas: 8A\n\n" +
		"*BAGIAN 2: DETAIL KEJADIAN*\n" +
		"Jenis Pengaduan: " + TypeBullying + ", Lainnya (Dipalak)\n" +
		"Pihak Terlibat: Kakak kelas\nWaktu & Tempat: Senin, kantin\n" +
		"Kronologi:\nSaya didorong saat antre.\nSaksi: Rina\n\n" +
		"*BAGIAN 4: HARAPAN & TINDAK LANJUT*\n" +
		"Harapan: " + Expectations[0] + "\nKontak: 08123\n"
	assert.Equal(t, want, f.Compose())

	f.IsAnonymous = true
	f.ToggleType(TypeGroupConflict)
	f.GroupName, f.Cause, f.Duration, f.PeaceAttempt = "Geng A", "Ejekan", Durations[1], "Tidak"
	got := f.Compose()
	assert.Contains(t, got, "Nama: Anonim\n")
	assert.NotContains(t, got, "Budi")
	assert.Contains(t, got, "*BAGIAN 3: MASALAH KELOMPOK*\nKelompok Berkonflik: Geng A\nPenyebab: Ejekan\n"+
		"Lama Berlangsung: Seminggu terakhir\nUpaya Damai: Tidak\n\n*BAGIAN 4")
}

func TestStatus_transitions(t *testing.T) {
	assert.True(t, Transitions.Allowed(StatusPending, StatusRead))
	assert.False(t, Transitions.Allowed(StatusRead, StatusPending))
	assert.False(t, Transitions.Allowed(StatusRead, StatusRead))
	assert.Equal(t, []Status{StatusPending}, Transitions.Sources(StatusRead))

	r := Report{Status: StatusPending}
	r.Decorate()
	assert.True(t, r.CanMarkRead)
	r.Status = StatusRead
	r.Decorate()
	assert.False(t, r.CanMarkRead)
	assert.Equal(t, "Sudah Dibaca", r.StatusLabel)
}
