package user

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var (
	// errors
	ErrNotFound            = errors.New("user not found")
	ErrEmailExists         = errors.New("Email sudah terdaftar")
	ErrEmailNotFound       = errors.New("Email tidak terdaftar")
	ErrWrongPassword       = errors.New("Password salah")
	ErrWrongLegacyPassword = errors.New("Password salah (Gunakan 123456 untuk akun lama)")
	ErrDeleteSelf          = errors.New("Tidak dapat menghapus akun sendiri")
	ErrNotImage            = errors.New("File harus berupa gambar")
	ErrAvatarTooLarge      = errors.New("Ukuran foto maksimal 2MB")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		// UpdateUser saves the given columns of usr, all editable ones when none is given.
		UpdateUser(ctx context.Context, usr User, columns ...string) (User, error)
		// UpsertUsers inserts users, overwriting the ones whose email already exists.
		UpsertUsers(ctx context.Context, usrs []User) (int, error)
		DeleteUser(ctx context.Context, id int64) error
	}

	Service struct {
		repo           Repository
		validate       *validator.Validate
		logger         core.Logger
		avatarMaxBytes int64
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:           repo,
		validate:       validate,
		logger:         logger,
		avatarMaxBytes: conf.Portal.AvatarMaxBytes,
	}
}

func emailTaken(err error) error {
	if errors.Cause(err) == ErrEmailExists {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return err
}

// Authenticate finds the user of email and checks their password.
// Passwords not stored as bcrypt hashes yet are upgraded on success.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrEmailNotFound
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, err
	}

	if usr.NeedsRehash() {
		if err = usr.SetPassword(pwd); err == nil {
			_, err = svc.repo.UpdateUser(ctx, usr, "password")
		}
		if err != nil {
			// the login itself succeeded
			svc.logger.Error(fmt.Sprintf("upgrading password of user %d: %v", usr.ID, err), err)
		}
	}
	return usr, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// Search returns the users matching filter, ordered by name unless told otherwise.
func (svc *Service) Search(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	if len(filter.Orderings) == 0 {
		filter.Orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	return svc.repo.QueryUsers(ctx, filter)
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}

	usr := User{
		Name:  nu.Name,
		Email: nu.Email,
		Role:  nu.Role,
		Class: nullString(nu.Class),
	}
	pwd := nu.Password
	if pwd == "" {
		pwd = DefaultPassword
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	return usr, emailTaken(err)
}

func (svc *Service) Update(ctx context.Context, id int64, uu UpdateUser) (User, error) {
	uu.Clean()
	if err := svc.validate.Struct(uu); err != nil {
		return User{}, err
	}

	usr := User{
		ID:    id,
		Name:  uu.Name,
		Email: uu.Email,
		Role:  uu.Role,
		Class: nullString(uu.Class),
	}
	cols := []string{"name", "email", "role", "class"}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
		cols = append(cols, "password")
	}
	usr, err := svc.repo.UpdateUser(ctx, usr, cols...)
	return usr, emailTaken(err)
}

// Delete removes user id. Counselors cannot remove their own account.
func (svc *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrDeleteSelf
	}
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *Service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) error {
	cp.name, cp.email = usr.Name, usr.Email
	if err := svc.validate.Struct(cp); err != nil {
		return err
	}
	if err := usr.SetPassword(cp.Password); err != nil {
		return err
	}
	_, err := svc.repo.UpdateUser(ctx, usr, "password")
	return err
}

// SetAvatar stores an uploaded picture as a data URI on the user record.
func (svc *Service) SetAvatar(ctx context.Context, usr User, contentType string, data []byte) (User, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return User{}, ErrNotImage
	}
	if int64(len(data)) > svc.avatarMaxBytes {
		return User{}, ErrAvatarTooLarge
	}
	usr.AvatarURL = nullString("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
	return svc.repo.UpdateUser(ctx, usr, "avatar_url")
}

// Import upserts the rows as students, matching existing accounts by email.
func (svc *Service) Import(ctx context.Context, rows []ImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, ErrNoImportRows
	}
	usrs := make([]User, 0, len(rows))
	for _, row := range rows {
		usr := User{
			Name:  core.CleanName(row.Name),
			Email: core.CleanString(row.Email, true /* lower */),
			Role:  RoleStudent,
			Class: nullString(row.Class),
		}
		pwd := row.Password
		if pwd == "" {
			pwd = DefaultPassword
		}
		if err := usr.SetPassword(pwd); err != nil {
			return 0, err
		}
		usrs = append(usrs, usr)
	}
	return svc.repo.UpsertUsers(ctx, usrs)
}

// EnsureUser creates the user of nu.Email when missing. Reports whether it was created.
func (svc *Service) EnsureUser(ctx context.Context, nu NewUser) (User, bool, error) {
	nu.Clean()
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: nu.Email})
	if err == nil {
		return usr, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, false, err
	}
	usr, err = svc.Create(ctx, nu)
	return usr, err == nil, err
}

// ResetPassword sets a new password on the account of email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return svc.ChangePassword(ctx, usr, ChangePassword{Password: pwd, PasswordConfirm: pwd})
}
