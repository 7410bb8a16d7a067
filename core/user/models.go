package user

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

// Roles
const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
)

// DefaultPassword is the password of accounts created without one.
const DefaultPassword = "123456"

var (
	AllRoles = []string{RoleStudent, RoleCounselor}

	Roles = []Role{
		{Name: "Siswa", Value: RoleStudent},
		{Name: "Konselor", Value: RoleCounselor},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	Class        null.String `json:"class"`
	AvatarURL    null.String `json:"avatar_url"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
}

func (u *User) IsCounselor() bool { return u.Role == RoleCounselor }
func (u *User) IsStudent() bool   { return u.Role == RoleStudent }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies pwd against the stored password.
// Accounts without a password only accept DefaultPassword. Rows still holding a plain password
// are compared as is, NeedsRehash reports them.
func (u *User) CheckPassword(pwd string) error {
	switch {
	case u.PasswordHash == "":
		if pwd != DefaultPassword {
			return ErrWrongLegacyPassword
		}
		return nil
	case u.NeedsRehash():
		if subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(pwd)) != 1 {
			return ErrWrongPassword
		}
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// NeedsRehash reports whether the stored password is not a bcrypt hash yet.
func (u *User) NeedsRehash() bool {
	if u.PasswordHash == "" {
		return true
	}
	_, err := bcrypt.Cost([]byte(u.PasswordHash))
	return err != nil
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,userrole"`
	Class    string `json:"class" validate:"max=20"`
	Password string `json:"password"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanName(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	nu.Class = core.CleanString(nu.Class)
}

// UpdateUser defines what information may be provided to modify an existing User.
// A blank password keeps the current one.
type UpdateUser struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,userrole"`
	Class    string `json:"class" validate:"max=20"`
	Password string `json:"password"`
}

func (uu *UpdateUser) Clean() {
	nu := NewUser(*uu)
	nu.Clean()
	*uu = UpdateUser(nu)
}

type ChangePassword struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`

	// attributes the password must not resemble
	name, email string
}

type QueryFilter struct {
	Search    string            `query:"search"`
	Role      string            `query:"role"`
	Orderings []core.DBOrdering `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}

type GetFilter struct {
	ID    int64
	Email string
}

// nullString maps blank strings to NULL.
func nullString(s string) null.String {
	return null.NewString(s, strings.TrimSpace(s) != "")
}
