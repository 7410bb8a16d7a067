// Package testutil builds the shared fixtures of the test suites.
package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	logsvc "github.com/jurnalspendapol-design/rubikon-mobile/services/logger"
)

// NewConfig returns the configuration of the test suites, independent of the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Build:            "test",
		AppName:          "Rubikon",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		Locale:           "id",
		WorkDir:          core.Getwd(),
		FrontendBaseURL:  "http://rubikon.test",
		DefaultFromEmail: mail.Address{Name: "Rubikon", Address: "noreply@rubikon.test"},
		Server: core.ServerConfig{
			Address:            ":0",
			Host:               "localhost",
			BodyLimit:          "4M",
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
		},
		Backend: core.BackendConfig{Driver: core.BackendMemory, Timeout: 5 * time.Second},
		Portal: core.PortalConfig{
			AvatarMaxBytes:        2 * 1024 * 1024,
			ImportMaxBytes:        1024 * 1024,
			StrictAnonymity:       true,
			SubmitLockTTL:         10 * time.Second,
			SeedCounselorName:     "Guru BK Utama",
			SeedCounselorEmail:    "konselor@sekolah.id",
			SeedCounselorPassword: "password123",
		},
	}
}

// NewLogger returns a logger that reports nowhere.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// NewValidator returns a validator with every custom tag of the portal registered.
func NewValidator(conf *core.Config) *validator.Validate {
	validate, _ := NewValidatorAndTranslator(conf)
	return validate
}

// NewValidatorAndTranslator also returns the translator the validation messages are registered on.
func NewValidatorAndTranslator(conf *core.Config) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator(conf.Locale)
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	counseling.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string) user.User {
	t.Helper()
	usr := user.User{Name: name, Email: email, Role: role}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}
