package report

import (
	"strings"
	"time"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRead    Status = "read"
)

// Transitions is the report lifecycle: pending -> read.
var Transitions = core.Transitions[Status]{
	StatusPending: {StatusRead},
}

var statusLabels = map[Status]string{
	StatusPending: "Belum Dibaca",
	StatusRead:    "Sudah Dibaca",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string { return statusLabels[s] }

// AnonymousName replaces the reporter name of anonymous reports.
const AnonymousName = "Anonim"

// Report is a submitted incident report.
type Report struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id,omitempty"`
	StudentName string    `json:"student_name"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous"`
	Status      Status    `json:"status"`
	StatusLabel string    `json:"status_label"`
	CanMarkRead bool      `json:"can_mark_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Redact hides the reporter of an anonymous report.
func (r *Report) Redact() {
	if r.IsAnonymous {
		r.StudentID = 0
		r.StudentName = AnonymousName
	}
}

// Decorate fills the derived display fields.
func (r *Report) Decorate() {
	r.StatusLabel = r.Status.Label()
	r.CanMarkRead = Transitions.Allowed(r.Status, StatusRead)
}

// Incident types
const (
	TypeBullying      = "Perundungan (Bullying): Fisik, kata-kata kasar, atau di media sosial."
	TypeFacilities    = "Fasilitas Sekolah: Kamar mandi rusak, kelas tidak nyaman, dll."
	TypeSafety        = "Keamanan: Kehilangan barang, ancaman dari orang lain."
	TypeGroupConflict = "Masalah Kelompok: Konflik antar geng atau perpecahan di kelas."
	TypeOther         = "Lainnya"
)

var (
	Types = []string{TypeBullying, TypeFacilities, TypeSafety, TypeGroupConflict, TypeOther}

	Durations     = []string{"Baru hari ini", "Seminggu terakhir", "Sudah sangat lama (berbulan-bulan)"}
	PeaceAttempts = []string{"Ya", "Tidak"}

	Expectations = []string{
		"Mediasi (dipertemukan untuk damai).",
		"Pemberian sanksi tegas kepada pelaku.",
		"Perlindungan tambahan agar saya merasa aman.",
		"Cukup dicatat sebagai laporan saja dulu.",
	}
)

// Form holds the answers of the report wizard.
type Form struct {
	// Bagian 1
	ReporterName string `json:"namaPelapor"`
	Class        string `json:"kelas"`
	IsAnonymous  bool   `json:"isAnonymous"`

	// Bagian 2
	Types      []string `json:"jenisPengaduan"`
	TypeOther  string   `json:"jenisPengaduanLainnya"`
	Involved   string   `json:"pihakTerlibat"`
	TimePlace  string   `json:"waktuTempat"`
	Chronology string   `json:"kronologi"`
	Witnesses  string   `json:"saksi"`

	// Bagian 3 (group conflicts only)
	GroupName    string `json:"namaKelompok"`
	Cause        string `json:"penyebab"`
	Duration     string `json:"lamaMasalah"`
	PeaceAttempt string `json:"upayaDamai"`

	// Bagian 4
	Expectations []string `json:"harapan"`
	Contact      string   `json:"kontak"`
}

// NewForm returns the initial answers for a reporter.
func NewForm(name, class string) Form {
	return Form{
		ReporterName: name,
		Class:        class,
		Types:        []string{},
		Expectations: []string{},
	}
}

// IsGroupConflict reports whether the group conflict step applies.
func (f Form) IsGroupConflict() bool {
	return core.Contains(f.Types, TypeGroupConflict)
}

func (f Form) hasOther() bool {
	return core.Contains(f.Types, TypeOther)
}

// Clean trims the free text answers and drops blank selections.
func (f *Form) Clean() {
	f.ReporterName = core.CleanString(f.ReporterName)
	f.Class = core.CleanString(f.Class)
	f.Types = core.CleanStrings(f.Types)
	f.TypeOther = core.CleanString(f.TypeOther)
	f.Involved = core.CleanString(f.Involved)
	f.TimePlace = core.CleanString(f.TimePlace)
	f.Chronology = strings.TrimSpace(f.Chronology)
	f.Witnesses = core.CleanString(f.Witnesses)
	f.GroupName = core.CleanString(f.GroupName)
	f.Cause = core.CleanString(f.Cause)
	f.Duration = core.CleanString(f.Duration)
	f.PeaceAttempt = core.CleanString(f.PeaceAttempt)
	f.Expectations = core.CleanStrings(f.Expectations)
	f.Contact = core.CleanString(f.Contact)
}

// ToggleType selects or deselects an incident type.
func (f *Form) ToggleType(t string) {
	f.Types = toggle(f.Types, t)
}

// ToggleExpectation selects or deselects an expectation.
func (f *Form) ToggleExpectation(e string) {
	f.Expectations = toggle(f.Expectations, e)
}

func toggle(items []string, item string) []string {
	for i, it := range items {
		if it == item {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return append(items, item)
}
