package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

const avatarField = "avatar"

type profileApi struct {
	*Server
}

func registerProfileAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := profileApi{s}

	pg := g.Group("/profile", authed...)
	pg.GET("", api.retrieve)
	pg.PUT("/password", api.changePassword)
	pg.PUT("/avatar", api.setAvatar)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.User)
}

func (api *profileApi) changePassword(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data user.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = api.UserSvc.ChangePassword(ctx.Request().Context(), sess.User, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password berhasil diubah"})
}

func (api *profileApi) setAvatar(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	fh, data, err := readUpload(ctx, avatarField, api.Conf.Portal.AvatarMaxBytes)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.UserSvc.SetAvatar(reqCtx, sess.User, uploadContentType(fh, data), data)
	if err != nil {
		return errors.Wrap(err, "setting avatar")
	}
	if _, err = api.Sessions.Refresh(reqCtx, sess.ID, usr); err != nil {
		return errors.Wrap(err, "refreshing session")
	}
	return ctx.JSON(http.StatusOK, usr)
}
