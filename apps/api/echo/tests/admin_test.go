package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/jurnalspendapol-design/rubikon-mobile/apps/api/echo"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

func TestAdminAPI_Users(t *testing.T) {
	fx := setup(t)
	counselor := login(t, fx.srv, counselorEmail, password)
	student := login(t, fx.srv, studentEmail, password)

	t.Run("students are refused", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: []byte(`{"error":"Akses ditolak"}`)}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodGet, "/v1/admin/users", student))
	})

	t.Run("roles", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodGet, "/v1/admin/users/roles", counselor))
	})

	var created user.User
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{Name: "Siti", Email: "Siti@Siswa.com", Role: user.RoleStudent, Class: "7B"})
		rec := do(fx.srv, http.MethodPost, "/v1/admin/users", counselor, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarchall(t, rec, &created)
		assert.Equal(t, "siti@siswa.com", created.Email)
		assert.Equal(t, "7B", created.Class.String)

		// accounts created without a password use the default one
		login(t, fx.srv, "siti@siswa.com", user.DefaultPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{Name: "Siti Lain", Email: "siti@siswa.com", Role: user.RoleStudent})
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"Email sudah terdaftar"}`)}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodPost, "/v1/admin/users", counselor, body))
	})

	t.Run("search", func(t *testing.T) {
		rec := do(fx.srv, http.MethodGet, "/v1/admin/users?role=student&ordering=-name", counselor)
		require.Equal(t, http.StatusOK, rec.Code)
		var usrs []user.User
		unmarchall(t, rec, &usrs)
		require.Len(t, usrs, 2)
		assert.Equal(t, "Siti", usrs[0].Name)
		assert.Equal(t, "Budi", usrs[1].Name)

		rec = do(fx.srv, http.MethodGet, "/v1/admin/users?search=bud", counselor)
		unmarchall(t, rec, &usrs)
		require.Len(t, usrs, 1)
		assert.Equal(t, fx.student.ID, usrs[0].ID)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "Siti Aminah", Email: "siti@siswa.com", Role: user.RoleStudent, Class: "8A"})
		rec := do(fx.srv, http.MethodPut, fmt.Sprintf("/v1/admin/users/%d", created.ID), counselor, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		unmarchall(t, rec, &usr)
		assert.Equal(t, "Siti Aminah", usr.Name)
		assert.Equal(t, "8A", usr.Class.String)
	})

	t.Run("update own record refreshes the session", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "Bu Rina Wati", Email: counselorEmail, Role: user.RoleCounselor})
		rec := do(fx.srv, http.MethodPut, fmt.Sprintf("/v1/admin/users/%d", fx.counselor.ID), counselor, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(fx.srv, http.MethodGet, "/v1/profile", counselor)
		var usr user.User
		unmarchall(t, rec, &usr)
		assert.Equal(t, "Bu Rina Wati", usr.Name)
	})

	t.Run("history", func(t *testing.T) {
		rec := do(fx.srv, http.MethodPost, "/v1/counseling", student, marchallObj(t, individualSubmission("Budi")))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(fx.srv, http.MethodGet, fmt.Sprintf("/v1/admin/users/%d/history", fx.student.ID), counselor)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp UserHistoryResponse
		unmarchall(t, rec, &resp)
		assert.Equal(t, fx.student.ID, resp.User.ID)
		require.Len(t, resp.Requests, 1)
		assert.Equal(t, counseling.StatusPending, resp.Requests[0].Status)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrDeleteSelf.Error()})}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", fx.counselor.ID), counselor))
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/v1/admin/users/%d", created.ID)
		rec := do(fx.srv, http.MethodDelete, path, counselor)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(fx.srv, http.MethodGet, path+"/history", counselor)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := do(fx.srv, http.MethodDelete, "/v1/admin/users/abc", counselor)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminAPI_Import(t *testing.T) {
	fx := setup(t)
	counselor := login(t, fx.srv, counselorEmail, password)

	t.Run("template", func(t *testing.T) {
		rec := do(fx.srv, http.MethodGet, "/v1/admin/users/import/template", counselor)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), user.ImportTemplateName)
		assert.Equal(t, user.ImportTemplate, rec.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"error":"File file wajib diunggah"}`)}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodPost, "/v1/admin/users/import", counselor))
	})

	t.Run("no valid rows", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/admin/users/import", counselor, "file", "siswa.csv", []byte("nama,email\n,\n"))
		fx.srv.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrNoImportRows.Error()})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("import", func(t *testing.T) {
		csv := "nama,email,kelas,password\nAni,ani@siswa.com,7A,\n\nDodi,DODI@siswa.com,9C,dodi1234\n"
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/admin/users/import", counselor, "file", "siswa.csv", []byte(csv))
		fx.srv.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ImportResponse{Success: "Berhasil mengimpor 2 siswa!", Count: 2})}
		checkCodeAndData(t, tt, rec)

		login(t, fx.srv, "ani@siswa.com", user.DefaultPassword)
		login(t, fx.srv, "dodi@siswa.com", "dodi1234")
	})

	t.Run("too large", func(t *testing.T) {
		fx.conf.Portal.ImportMaxBytes = 8
		defer func() { fx.conf.Portal.ImportMaxBytes = 1024 * 1024 }()

		req, rec := newUploadRequest(t, http.MethodPost, "/v1/admin/users/import", counselor, "file", "siswa.csv", []byte("nama,email\nAni,ani@siswa.com\n"))
		fx.srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestAdminAPI_Modules(t *testing.T) {
	fx := setup(t)
	counselor := login(t, fx.srv, counselorEmail, password)
	student := login(t, fx.srv, studentEmail, password)

	t.Run("built-in modules until some are stored", func(t *testing.T) {
		rec := do(fx.srv, http.MethodGet, "/v1/modules", student)
		require.Equal(t, http.StatusOK, rec.Code)
		var mods []module.Module
		unmarchall(t, rec, &mods)
		require.Len(t, mods, 4)
		assert.True(t, mods[0].Builtin)
	})

	t.Run("students cannot write", func(t *testing.T) {
		body := marchallObj(t, module.NewModule{Title: "Judul", Content: "Isi"})
		rec := do(fx.srv, http.MethodPost, "/v1/admin/modules", student, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("blank title", func(t *testing.T) {
		body := marchallObj(t, module.NewModule{Title: "  ", Content: "Isi"})
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"title":"title wajib diisi"}`)}
		checkCodeAndData(t, tt, do(fx.srv, http.MethodPost, "/v1/admin/modules", counselor, body))
	})

	var m module.Module
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, module.NewModule{Title: "Atasi Stres Ujian", Content: "Tarik napas.", Category: "mental"})
		rec := do(fx.srv, http.MethodPost, "/v1/admin/modules", counselor, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarchall(t, rec, &m)
		assert.False(t, m.Builtin)

		rec = do(fx.srv, http.MethodGet, "/v1/modules", student)
		var mods []module.Module
		unmarchall(t, rec, &mods)
		require.Len(t, mods, 1)
		assert.Equal(t, "Atasi Stres Ujian", mods[0].Title)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, module.UpdateModule{Title: "Atasi Stres", Content: "Tarik napas dalam.", Category: "mental"})
		rec := do(fx.srv, http.MethodPut, fmt.Sprintf("/v1/admin/modules/%d", m.ID), counselor, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(fx.srv, http.MethodGet, fmt.Sprintf("/v1/modules/%d", m.ID), student)
		var got module.Module
		unmarchall(t, rec, &got)
		assert.Equal(t, "Atasi Stres", got.Title)
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(fx.srv, http.MethodDelete, fmt.Sprintf("/v1/admin/modules/%d", m.ID), counselor)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(fx.srv, http.MethodGet, "/v1/modules/999", student)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
