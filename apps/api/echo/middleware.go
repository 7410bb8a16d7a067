package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
)

// sessionMiddleware restores the session named by the token and puts it in the context.
// The stored user record is trusted as is until logout or expiry.
func sessionMiddleware(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			sess, err := sessions.Get(ctx.Request().Context(), claims.Id)
			if err != nil {
				if errors.Cause(err) == session.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "restoring session")
			}
			if strconv.FormatInt(sess.User.ID, 10) != claims.Subject {
				return errUnauthorized
			}
			ctx.Set(sessionContextKey, sess)
			return next(ctx)
		}
	}
}

func counselorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getContextSession(ctx)
		if err != nil {
			return err
		}
		if !sess.User.IsCounselor() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
