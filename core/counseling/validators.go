package counseling

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var (
	choiceTag  = "choice"
	choiceText = map[string]string{
		"id": "{0} bukan pilihan yang valid",
		"en": "{0} is not a valid option",
	}
)

// InitValidators registers the counseling form validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(choiceTag, choiceValidation)
	core.RegisterCustomTranslation(validate, translator, choiceTag, core.Localized(choiceText, translator))
}

// choiceValidation checks that the value is one of the options named by the tag param, e.g. `choice=time`.
func choiceValidation(fl validator.FieldLevel) bool {
	opts, ok := choices[fl.Param()]
	if !ok {
		return false
	}
	return core.Contains(opts, fl.Field().String())
}
