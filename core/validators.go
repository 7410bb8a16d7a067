package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	id_translations "github.com/go-playground/validator/v10/translations/id"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = map[string]string{
		"id": "{0} wajib diisi",
		"en": "{0} is required",
	}

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = map[string]string{
		"id": "wajib diisi",
		"en": "this field is required",
	}
)

// NewTranslator returns the translator of the given locale ("id" or "en"), defaulting to "id".
func NewTranslator(locale string) ut.Translator {
	_id := id.New()
	uni := ut.New(_id, _id, en.New())
	translator, found := uni.GetTranslator(locale)
	if !found {
		translator, _ = uni.GetTranslator("id")
	}
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	if translator.Locale() == "en" {
		_ = en_translations.RegisterDefaultTranslations(validate, translator)
	} else {
		_ = id_translations.RegisterDefaultTranslations(validate, translator)
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, Localized(notBlankText, translator))

	RegisterCustomTranslation(validate, translator, requiredTag, Localized(requiredText, translator), true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, Localized(requiredText, translator), true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Localized picks the text of the translator locale, falling back to "id".
func Localized(texts map[string]string, translator ut.Translator) string {
	if text, ok := texts[translator.Locale()]; ok {
		return text
	}
	return texts["id"]
}

// Custom Global Validators

// notBlankValidation rejects strings made of whitespace only.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
