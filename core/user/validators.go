package user

import (
	"strings"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var (
	userRoleTag  = "userrole"
	userRoleText = map[string]string{
		"id": "peran tidak valid",
		"en": "invalid role",
	}

	// password policy
	pwdMinLen    = 6
	pwdMinLenTag = "pwdminlen"
	pwdMinLenTxt = map[string]string{
		"id": "Password minimal 6 karakter",
		"en": "password must contain at least 6 characters",
	}

	pwdMatchTag = "pwdmatch"
	pwdMatchTxt = map[string]string{
		"id": "Password tidak cocok",
		"en": "passwords do not match",
	}

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = map[string]string{
		"id": "Password terlalu mirip dengan nama atau email",
		"en": "password cannot be similar to user attributes",
	}
)

// InitValidators registers the user validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(userRoleTag, userRoleValidation)
	core.RegisterCustomTranslation(validate, translator, userRoleTag, core.Localized(userRoleText, translator))

	validate.RegisterStructValidation(userStructValidation, NewUser{}, UpdateUser{}, ChangePassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, core.Localized(pwdMinLenTxt, translator))
	core.RegisterCustomTranslation(validate, translator, pwdMatchTag, core.Localized(pwdMatchTxt, translator))
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, core.Localized(pwdAttrSimText, translator))
}

// Custom Validators

func userRoleValidation(fl validator.FieldLevel) bool {
	return core.Contains(AllRoles, fl.Field().String())
}

// userStructValidation does struct level validation on NewUser, UpdateUser and ChangePassword structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.Email, sl)
		}
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.Email, sl)
		}
	case ChangePassword:
		if usr.Password != usr.PasswordConfirm {
			sl.ReportError(usr.PasswordConfirm, "password_confirm", "PasswordConfirm", pwdMatchTag, "")
			return
		}
		validatePassword(usr.Password, usr.name, usr.email, sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 6
// - no user attrs similarity
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if utf8.RuneCountInString(pwd) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	if getRatio(lpwd, strings.ToLower(name)) >= pwdMaxSim || getRatio(lpwd, strings.ToLower(email)) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
	}
}
