package endpoint_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/endpoint"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/roster"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// backendCall is one request received by the fake clinic backend.
type backendCall struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// fakeClinic stands in for the clinic REST API. Unregistered routes answer 404.
type fakeClinic struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []backendCall
}

func newFakeClinic(t *testing.T) *fakeClinic {
	t.Helper()
	fc := &fakeClinic{routes: map[string]http.HandlerFunc{}}
	fc.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fc.mu.Lock()
		fc.calls = append(fc.calls, backendCall{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type"), Body: body})
		h, ok := fc.routes[r.Method+" "+r.URL.Path]
		fc.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		h(w, r)
	}))
	t.Cleanup(fc.Close)
	return fc
}

func (fc *fakeClinic) handle(method, path string, h http.HandlerFunc) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.routes[method+" "+path] = h
}

// reply registers a route answering status with v encoded as JSON.
func (fc *fakeClinic) reply(method, path string, status int, v interface{}) {
	fc.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, v)
	})
}

func (fc *fakeClinic) Calls() []backendCall {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]backendCall(nil), fc.calls...)
}

// CallsTo returns the calls matching method and path.
func (fc *fakeClinic) CallsTo(method, path string) []backendCall {
	var out []backendCall
	for _, c := range fc.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (fc *fakeClinic) Reset() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.calls = nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// recordingMailer captures sent mail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

type testEnv struct {
	R      *gin.Engine
	DB     *gorm.DB
	Clinic *fakeClinic
	Queue  *roster.Queue
	Mailer *recordingMailer
}

// SetupTestServer initializes an in-memory DB, migrates and seeds it, and returns the full
// router talking to a fake clinic backend.
func SetupTestServer(t *testing.T) *testEnv {
	t.Helper()
	db, err := config.ConnectMySQL()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}
	testModels := []interface{}{&model.Role{}, &model.User{}, &model.Session{}, &model.SecurityLog{}, &model.Feedback{}}
	if err := db.AutoMigrate(testModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := model.SeedRoles(db); err != nil {
		t.Fatalf("seeding roles failed: %v", err)
	}

	clinic := newFakeClinic(t)
	client := backend.New(clinic.URL, 2*time.Second)
	queue := roster.NewQueue(client, roster.QueueConfig{Workers: 2, Size: 64, Timeout: time.Second})
	t.Cleanup(queue.Close)
	mailer := &recordingMailer{}

	r := endpoint.NewRouter(endpoint.Deps{
		DB:          db,
		Backend:     client,
		Roster:      roster.NewService(client, queue),
		Repairs:     queue,
		Mailer:      mailer,
		ClinicName:  "Test Clinic",
		CORSOrigins: []string{"*"},
	})

	t.Cleanup(func() {
		if err := db.Migrator().DropTable(testModels...); err != nil {
			t.Errorf("failed to drop tables during cleanup: %v", err)
		}
	})
	return &testEnv{R: r, DB: db, Clinic: clinic, Queue: queue, Mailer: mailer}
}

// CreateUser stores an operator with an argon2 password.
func CreateUser(t *testing.T, db *gorm.DB, email, password string) model.User {
	t.Helper()
	role, err := model.RoleByName(db, model.RoleAdmin)
	require.NoError(t, err)
	salt, err := util.GenerateSalt()
	require.NoError(t, err)
	hash, err := util.HashPasswordArgon2(password, salt)
	require.NoError(t, err)
	user := model.User{Name: "Operator", Email: email, Password: hash, PasswordSalt: salt, RoleID: role.ID}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Login posts credentials and returns the session token.
func Login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	rr := doRequest(r, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var data endpoint.LoginResponse
	require.NoError(t, json.Unmarshal(ParseAPIResp(t, rr).Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

// SetupServerWithOperator returns a server plus the session token of a logged-in operator.
func SetupServerWithOperator(t *testing.T) (*testEnv, string) {
	env := SetupTestServer(t)
	CreateUser(t, env.DB, "admin@clinic.test", "adminpass")
	return env, Login(t, env.R, "admin@clinic.test", "adminpass")
}

// doRequest sends body as JSON unless it is nil.
func doRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func authed(token string) map[string]string {
	return map[string]string{"session-token": token}
}

// formFile is a file part of a multipart request.
type formFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     string
}

// doMultipart sends a multipart form with the given fields and optional file.
func doMultipart(t *testing.T, r http.Handler, method, path, token string, fields map[string]string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		h.Set("Content-Type", file.ContentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader(file.Content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("session-token", token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// ParseAPIResp decodes a standard API response from a ResponseRecorder.
// It fails the test on decoding error.
func ParseAPIResp(t *testing.T, rr *httptest.ResponseRecorder) apiResp {
	t.Helper()
	var resp apiResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

// ParseData unmarshals the data field of a response into dst.
func ParseData(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ParseAPIResp(t, rr).Data, dst), rr.Body.String())
}
