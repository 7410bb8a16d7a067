package report

import (
	"strings"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/wizard"
)

// Steps
const (
	StepIdentity = iota + 1
	StepDetails
	StepGroup
	StepFollowUp
)

const (
	msgRequired   = "wajib diisi"
	msgPickOne    = "pilih minimal satu"
	msgBadChoice  = "pilihan tidak valid"
	msgBadChoices = "berisi pilihan yang tidak valid"
)

// Wizard is the incident report flow. The group conflict step only applies when that incident type is selected.
var Wizard = wizard.New(
	wizard.Step[Form]{
		Key:   "identitas",
		Title: "Bagian 1: Identitas & Keamanan",
		Ready: readyIdentity,
	},
	wizard.Step[Form]{
		Key:   "detail",
		Title: "Bagian 2: Detail Pengaduan",
		Ready: readyDetails,
	},
	wizard.Step[Form]{
		Key:     "kelompok",
		Title:   "Bagian 3: Khusus Pengaduan Kelompok",
		Visible: Form.IsGroupConflict,
		Ready:   readyGroup,
	},
	wizard.Step[Form]{
		Key:   "harapan",
		Title: "Bagian 4: Harapan & Tindak Lanjut",
		Ready: readyFollowUp,
	},
)

type fieldErrs []core.FieldError

func (fe *fieldErrs) add(field, msg string) {
	*fe = append(*fe, core.FieldError{Field: field, Error: msg})
}

func (fe fieldErrs) err() error {
	if len(fe) == 0 {
		return nil
	}
	return core.NewValidationError(nil, fe...)
}

func readyIdentity(f Form) error {
	var errs fieldErrs
	if !f.IsAnonymous && f.ReporterName == "" {
		errs.add("namaPelapor", msgRequired)
	}
	if f.Class == "" {
		errs.add("kelas", msgRequired)
	}
	return errs.err()
}

func readyDetails(f Form) error {
	var errs fieldErrs
	if len(f.Types) == 0 {
		errs.add("jenisPengaduan", msgPickOne)
	} else if !allIn(f.Types, Types) {
		errs.add("jenisPengaduan", msgBadChoices)
	}
	if f.hasOther() && f.TypeOther == "" {
		errs.add("jenisPengaduanLainnya", msgRequired)
	}
	if f.Involved == "" {
		errs.add("pihakTerlibat", msgRequired)
	}
	if f.TimePlace == "" {
		errs.add("waktuTempat", msgRequired)
	}
	if f.Chronology == "" {
		errs.add("kronologi", msgRequired)
	}
	return errs.err()
}

func readyGroup(f Form) error {
	var errs fieldErrs
	if f.GroupName == "" {
		errs.add("namaKelompok", msgRequired)
	}
	if f.Cause == "" {
		errs.add("penyebab", msgRequired)
	}
	if f.Duration == "" {
		errs.add("lamaMasalah", msgRequired)
	} else if !core.Contains(Durations, f.Duration) {
		errs.add("lamaMasalah", msgBadChoice)
	}
	if f.PeaceAttempt == "" {
		errs.add("upayaDamai", msgRequired)
	} else if !core.Contains(PeaceAttempts, f.PeaceAttempt) {
		errs.add("upayaDamai", msgBadChoice)
	}
	return errs.err()
}

func readyFollowUp(f Form) error {
	var errs fieldErrs
	if len(f.Expectations) == 0 {
		errs.add("harapan", msgPickOne)
	} else if !allIn(f.Expectations, Expectations) {
		errs.add("harapan", msgBadChoices)
	}
	if f.Contact == "" {
		errs.add("kontak", msgRequired)
	}
	return errs.err()
}

func allIn(items, choices []string) bool {
	for _, it := range items {
		if !core.Contains(choices, it) {
			return false
		}
	}
	return true
}

// Compose renders the answers as the text block stored with the report.
func (f Form) Compose() string {
	name := f.ReporterName
	if f.IsAnonymous {
		name = AnonymousName
	}

	var b strings.Builder
	b.WriteString("*LAPORAN PENGADUAN*\n\n")

	b.WriteString("*BAGIAN 1: IDENTITAS*\n")
	b.WriteString("Nama: " + name + "\n")
	b.WriteString("Kelas: " + f.Class + "\n\n")

	b.WriteString("*BAGIAN 2: DETAIL KEJADIAN*\n")
	b.WriteString("Jenis Pengaduan: " + strings.Join(f.Types, ", "))
	if f.hasOther() {
		b.WriteString(" (" + f.TypeOther + ")")
	}
	b.WriteString("\n")
	b.WriteString("Pihak Terlibat: " + f.Involved + "\n")
	b.WriteString("Waktu & Tempat: " + f.TimePlace + "\n")
	b.WriteString("Kronologi:\n" + f.Chronology + "\n")
	b.WriteString("Saksi: " + f.Witnesses + "\n\n")

	if f.IsGroupConflict() {
		b.WriteString("*BAGIAN 3: MASALAH KELOMPOK*\n")
		b.WriteString("Kelompok Berkonflik: " + f.GroupName + "\n")
		b.WriteString("Penyebab: " + f.Cause + "\n")
		b.WriteString("Lama Berlangsung: " + f.Duration + "\n")
		b.WriteString("Upaya Damai: " + f.PeaceAttempt + "\n\n")
	}

	b.WriteString("*BAGIAN 4: HARAPAN & TINDAK LANJUT*\n")
	b.WriteString("Harapan: " + strings.Join(f.Expectations, ", ") + "\n")
	b.WriteString("Kontak: " + f.Contact + "\n")
	return b.String()
}
