package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/quiz"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/report"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/wizard"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "Sesi berakhir, silakan masuk kembali")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "Akses ditolak")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "Data tidak ditemukan")
	errHttpConflict  = echo.NewHTTPError(http.StatusConflict, "Perubahan status tidak diizinkan")
	errHttpBadInput  = echo.NewHTTPError(http.StatusBadRequest, "Data tidak valid")

	// failureMessageKey holds the message shown instead of a bare 500 for the current request
	failureMessageKey = "failureMessage"

	notFoundErrs = []error{user.ErrNotFound, counseling.ErrNotFound, report.ErrNotFound, module.ErrNotFound}

	// user-correctable errors, shown as is
	badRequestErrs = []error{
		user.ErrEmailNotFound,
		user.ErrWrongPassword,
		user.ErrWrongLegacyPassword,
		user.ErrDeleteSelf,
		user.ErrNotImage,
		user.ErrAvatarTooLarge,
		user.ErrNoImportRows,
		user.ErrBadCSV,
		counseling.ErrTooManyTopics,
		counseling.ErrPrivacyNotAgreed,
		counseling.ErrUnknownMode,
		counseling.ErrMissingModeAnswers,
		session.ErrEmptyJournal,
		quiz.ErrAnswerCount,
		quiz.ErrBadOption,
		wizard.ErrUnknownStep,
		wizard.ErrLastStep,
		wizard.ErrFirstStep,
		wizard.ErrHiddenStep,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[fieldName(vErr)] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case isOneOf(cause, notFoundErrs):
				code, message = errHttpNotFound.Code, errHttpNotFound.Message
			case isOneOf(cause, badRequestErrs):
				code, message = http.StatusBadRequest, cause.Error()
			case cause == core.ErrInvalidTransition:
				code, message = errHttpConflict.Code, errHttpConflict.Message
			case cause == core.ErrBusy:
				code, message = http.StatusTooManyRequests, cause.Error()
			case cause == session.ErrNotFound:
				code, message = errUnauthorized.Code, errUnauthorized.Message
			case core.IsBadInput(err):
				code, message = errHttpBadInput.Code, errHttpBadInput.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				if m, ok := ctx.Get(failureMessageKey).(string); ok {
					message = m
				}

				var usr user.User
				if sess, sErr := getContextSession(ctx); sErr == nil {
					usr = sess.User
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// fieldName is the JSON path of a failed field below the top level struct, e.g. `pribadi.kelas`.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return fe.Field()
}

// failWith shows msg instead of the generic server error message if the request ends in a server error.
func failWith(ctx echo.Context, msg string) {
	ctx.Set(failureMessageKey, msg)
}

func isOneOf(err error, errs []error) bool {
	for _, e := range errs {
		if err == e {
			return true
		}
	}
	return false
}
