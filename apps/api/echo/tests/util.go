package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/jurnalspendapol-design/rubikon-mobile/apps/api/echo"
	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/content"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/counseling"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/module"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/quiz"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/report"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/session"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	appfs "github.com/jurnalspendapol-design/rubikon-mobile/fs"
	emailsvc "github.com/jurnalspendapol-design/rubikon-mobile/services/email"
	"github.com/jurnalspendapol-design/rubikon-mobile/services/metrics"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/cache"
	inmemdb "github.com/jurnalspendapol-design/rubikon-mobile/storage/database/inmem"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/repos"
	testutil "github.com/jurnalspendapol-design/rubikon-mobile/tests"
)

const (
	counselorEmail = "konselor@sekolah.id"
	studentEmail   = "budi@siswa.com"
	password       = "rahasia1"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	srv       *Server
	conf      *core.Config
	mailer    *emailsvc.ConsoleServiceMock
	usrRepo   user.Repository
	counselor user.User
	student   user.User
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := repos.NewUserRepository(db)

	// set up services
	validate, translator := testutil.NewValidatorAndTranslator(conf)
	mailer := emailsvc.NewConsoleServiceMock(logger, conf)
	sessions := session.NewManager(cache.NewMemoryStore(), conf)

	portal, err := content.LoadPortal(appfs.FS, appfs.ContentDir)
	require.NoError(t, err)
	qz, err := quiz.Load(appfs.FS, appfs.ContentDir)
	require.NoError(t, err)
	modSvc, err := module.NewService(repos.NewModuleRepository(db), validate, logger, appfs.FS, appfs.ContentDir)
	require.NoError(t, err)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		Metrics:        metrics.New(),
		Sessions:       sessions,
		UserSvc:        user.NewService(usrRepo, validate, logger, conf),
		CounselingSvc:  counseling.NewService(repos.NewCounselingRepository(db), validate, mailer, logger, sessions, conf),
		ReportSvc:      report.NewService(repos.NewReportRepository(db), sessions, conf),
		ModuleSvc:      modSvc,
		Portal:         portal,
		Quiz:           qz,
		DisableReqLogs: true,
	})

	return fixture{
		srv:       srv,
		conf:      conf,
		mailer:    mailer,
		usrRepo:   usrRepo,
		counselor: testutil.CreateUser(t, usrRepo, "Bu Rina", counselorEmail, password, user.RoleCounselor),
		student:   testutil.CreateUser(t, usrRepo, "Budi", studentEmail, password, user.RoleStudent),
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest posts a multipart form holding one file under field.
func newUploadRequest(t *testing.T, method, path, token, field, filename string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

// login signs in through the API and returns the token.
func login(t *testing.T, srv *Server, email, pwd string) string {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", marchallObj(t, LoginRequest{Email: email, Password: pwd}))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	unmarchall(t, rec, &resp)
	return resp.Token
}

// do runs one request and returns the recorder.
func do(srv *Server, method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	srv.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarchall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarchall() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
