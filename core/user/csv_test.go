package user

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := "nama,email,kelas,password\n" +
		"Budi Santoso, budi@siswa.com ,X-A,rahasia\n" +
		"\n" +
		"Tanpa Email,,X-B,\n" +
		"Siti,siti@siswa.com\n" +
		"Dodi \"Dod\" Pratama,dodi@siswa.com,X-C,\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []ImportRow{
		{Name: "Budi Santoso", Email: "budi@siswa.com", Class: "X-A", Password: "rahasia"},
		{Name: "Siti", Email: "siti@siswa.com"},
		{Name: `Dodi "Dod" Pratama`, Email: "dodi@siswa.com", Class: "X-C"},
	}, rows)

	rows, err = ParseCSV(strings.NewReader("nama,email\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = ParseCSV(iotest.ErrReader(io.ErrUnexpectedEOF))
	assert.Equal(t, ErrBadCSV, errors.Cause(err))
}

func TestUser_CheckPassword(t *testing.T) {
	var usr User
	assert.Equal(t, ErrWrongLegacyPassword, usr.CheckPassword("rahasia"))
	assert.NoError(t, usr.CheckPassword(DefaultPassword))
	assert.True(t, usr.NeedsRehash())

	usr.PasswordHash = "plain-pass"
	assert.True(t, usr.NeedsRehash())
	assert.NoError(t, usr.CheckPassword("plain-pass"))
	assert.Equal(t, ErrWrongPassword, usr.CheckPassword("plain"))

	require.NoError(t, usr.SetPassword("rahasia1"))
	assert.False(t, usr.NeedsRehash())
	assert.NoError(t, usr.CheckPassword("rahasia1"))
	assert.Equal(t, ErrWrongPassword, usr.CheckPassword("plain-pass"))
}
