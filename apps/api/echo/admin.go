package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

const importField = "file"

var userOrderingFields = []string{"name", "email", "role", "class", "created_at"}

type adminApi struct {
	*Server
}

// registerAdminAPI mounts the counselor dashboard. Every route requires the counselor role.
func registerAdminAPI(g *echo.Group, s *Server, authed []echo.MiddlewareFunc) {
	api := adminApi{s}

	mw := append(append([]echo.MiddlewareFunc{}, authed...), counselorMiddleware)
	ag := g.Group("/admin", mw...)

	// counseling requests
	ag.GET("/requests", api.queryRequests)
	ag.POST("/requests/:id/accept", api.acceptRequest)
	ag.POST("/requests/:id/reject", api.rejectRequest)

	// reports
	ag.GET("/reports", api.queryReports)
	ag.POST("/reports/:id/read", api.readReport)

	// users
	ag.GET("/users", api.queryUsers)
	ag.POST("/users", api.createUser)
	ag.GET("/users/roles", api.queryRoles)
	ag.POST("/users/import", api.importUsers)
	ag.GET("/users/import/template", api.importTemplate)
	ag.PUT("/users/:id", api.updateUser)
	ag.DELETE("/users/:id", api.destroyUser)
	ag.GET("/users/:id/history", api.userHistory)

	// modules
	ag.POST("/modules", api.createModule)
	ag.PUT("/modules/:id", api.updateModule)
	ag.DELETE("/modules/:id", api.destroyModule)
}

// Requests

func (api *adminApi) queryRequests(ctx echo.Context) error {
	reqs, err := api.CounselingSvc.ListAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing counseling requests")
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *adminApi) acceptRequest(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	req, err := api.CounselingSvc.Accept(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "accepting counseling request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *adminApi) rejectRequest(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	req, err := api.CounselingSvc.Reject(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "rejecting counseling request")
	}
	return ctx.JSON(http.StatusOK, req)
}

// Reports

func (api *adminApi) queryReports(ctx echo.Context) error {
	reps, err := api.ReportSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing reports")
	}
	return ctx.JSON(http.StatusOK, reps)
}

func (api *adminApi) readReport(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	rep, err := api.ReportSvc.MarkRead(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "marking report read")
	}
	return ctx.JSON(http.StatusOK, rep)
}

// Users

func (api *adminApi) queryUsers(ctx echo.Context) error {
	filter := user.QueryFilter{Search: ctx.QueryParam("search"), Role: ctx.QueryParam("role")}
	ordering := new(Ordering)
	ordering.Bind(ctx, userOrderingFields...)
	filter.Orderings = ordering.Orderings

	usrs, err := api.UserSvc.Search(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, usrs)
}

func (api *adminApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *adminApi) createUser(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	usr, err := api.UserSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *adminApi) updateUser(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.UserSvc.Update(reqCtx, id, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	// keep the own session in line with the edited record
	if usr.ID == sess.User.ID {
		if _, err = api.Sessions.Refresh(reqCtx, sess.ID, usr); err != nil {
			return errors.Wrap(err, "refreshing session")
		}
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *adminApi) destroyUser(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.UserSvc.Delete(ctx.Request().Context(), sess.User.ID, id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) userHistory(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()
	usr, err := api.UserSvc.Get(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	reqs, err := api.CounselingSvc.ListForStudent(reqCtx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing user history")
	}
	return ctx.JSON(http.StatusOK, UserHistoryResponse{User: usr, Requests: reqs})
}

func (api *adminApi) importUsers(ctx echo.Context) error {
	_, data, err := readUpload(ctx, importField, api.Conf.Portal.ImportMaxBytes)
	if err != nil {
		return err
	}
	if int64(len(data)) > api.Conf.Portal.ImportMaxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File terlalu besar")
	}

	rows, err := user.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "parsing import file")
	}
	n, err := api.UserSvc.Import(ctx.Request().Context(), rows)
	if err != nil {
		return errors.Wrap(err, "importing users")
	}
	return ctx.JSON(http.StatusOK, ImportResponse{
		Success: fmt.Sprintf("Berhasil mengimpor %d siswa!", n),
		Count:   n,
	})
}

func (api *adminApi) importTemplate(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", user.ImportTemplateName))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(user.ImportTemplate))
}

// Modules

func (api *adminApi) createModule(ctx echo.Context) error {
	var data module.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	m, err := api.ModuleSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *adminApi) updateModule(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data module.UpdateModule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	m, err := api.ModuleSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *adminApi) destroyModule(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.ModuleSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	UserHistoryResponse struct {
		User     user.User            `json:"user"`
		Requests []counseling.Request `json:"requests"`
	}

	ImportResponse struct {
		Success string `json:"success"`
		Count   int    `json:"count"`
	}
)
