package user

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	ImportTemplateName = "template_siswa.csv"
	ImportTemplate     = "nama,email,kelas,password\nBudi Santoso,budi@siswa.com,X-A,123456\nSiti Aminah,siti@siswa.com,X-B,123456"
)

var (
	ErrNoImportRows = errors.New("Tidak ada data siswa yang valid")
	ErrBadCSV       = errors.New("Gagal mengimpor data. Pastikan format CSV benar.")
)

// ImportRow is one student line of an import file: nama,email,kelas,password.
type ImportRow struct {
	Name     string
	Email    string
	Class    string
	Password string
}

// ParseCSV reads the student rows of an import file. The header line is skipped,
// as are blank lines and rows missing a name or an email.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	rows := make([]ImportRow, 0)
	header := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(ErrBadCSV, err.Error())
		}
		if header {
			header = false
			continue
		}

		var cols [4]string
		for i := 0; i < len(cols) && i < len(rec); i++ {
			cols[i] = strings.TrimSpace(rec[i])
		}
		if cols[0] == "" || cols[1] == "" {
			continue
		}
		rows = append(rows, ImportRow{Name: cols[0], Email: cols[1], Class: cols[2], Password: cols[3]})
	}
	return rows, nil
}
