package endpoint_test

import (
	"net/http"
	"testing"

	"github.com/ariebrainware/clinic-admin/endpoint"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	env := SetupTestServer(t)
	user := CreateUser(t, env.DB, "admin@clinic.test", "adminpass")

	rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "admin@clinic.test", "password": "adminpass"}, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var data endpoint.LoginResponse
	ParseData(t, rr, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, model.RoleAdmin, data.Role)
	assert.Equal(t, user.ID, data.UserID)

	var session model.Session
	require.NoError(t, env.DB.Where("session_token = ?", data.Token).First(&session).Error)
	assert.Equal(t, user.ID, session.UserID)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	env := SetupTestServer(t)
	user := CreateUser(t, env.DB, "admin@clinic.test", "adminpass")

	rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "Admin@Clinic.TEST", "password": "adminpass"}, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var data endpoint.LoginResponse
	ParseData(t, rr, &data)
	assert.Equal(t, user.ID, data.UserID)
}

func TestLogin_InvalidPayload(t *testing.T) {
	env := SetupTestServer(t)

	rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "not-an-email"}, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, ParseAPIResp(t, rr).Success)
}

func TestLogin_UnknownUser(t *testing.T) {
	env := SetupTestServer(t)

	rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "ghost@clinic.test", "password": "whatever"}, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid email or password", ParseAPIResp(t, rr).Msg)
}

func TestLogin_WrongPasswordCountsFailure(t *testing.T) {
	env := SetupTestServer(t)
	user := CreateUser(t, env.DB, "admin@clinic.test", "adminpass")

	rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "admin@clinic.test", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var stored model.User
	require.NoError(t, env.DB.First(&stored, user.ID).Error)
	assert.Equal(t, 1, stored.FailedAttempts)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	env := SetupTestServer(t)
	CreateUser(t, env.DB, "admin@clinic.test", "adminpass")

	for i := 0; i < model.MaxFailedAttempts; i++ {
		rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "admin@clinic.test", "password": "wrong"}, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	}

	rr := doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "admin@clinic.test", "password": "adminpass"}, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, ParseAPIResp(t, rr).Msg, "Account is locked")
}

func TestLogin_SuccessResetsFailures(t *testing.T) {
	env := SetupTestServer(t)
	user := CreateUser(t, env.DB, "admin@clinic.test", "adminpass")
	doRequest(env.R, http.MethodPost, "/login", map[string]string{"email": "admin@clinic.test", "password": "wrong"}, nil)

	Login(t, env.R, "admin@clinic.test", "adminpass")

	var stored model.User
	require.NoError(t, env.DB.First(&stored, user.ID).Error)
	assert.Zero(t, stored.FailedAttempts)
	assert.Nil(t, stored.LockedUntil)
}

var protectedRoutes = []struct {
	method string
	path   string
}{
	{http.MethodDelete, "/logout"},
	{http.MethodGet, "/dashboard"},
	{http.MethodGet, "/doctors"},
	{http.MethodPost, "/doctors"},
	{http.MethodPut, "/doctors/d1"},
	{http.MethodDelete, "/doctors/d1?confirm=true"},
	{http.MethodGet, "/doctors/d1/image"},
	{http.MethodGet, "/doctors/d1/visits"},
	{http.MethodPost, "/doctors/d1/visits"},
	{http.MethodGet, "/visits/v1"},
	{http.MethodDelete, "/visits/v1?confirm=true"},
	{http.MethodGet, "/visits/v1/patients"},
	{http.MethodPost, "/visits/v1/patients"},
	{http.MethodPut, "/patients/p1"},
	{http.MethodPatch, "/patients/p1/fee"},
	{http.MethodDelete, "/patients/p1?confirm=true"},
	{http.MethodGet, "/totals"},
	{http.MethodGet, "/schedules"},
	{http.MethodPost, "/schedules"},
	{http.MethodPut, "/schedules/1"},
	{http.MethodDelete, "/schedules/1?confirm=true"},
	{http.MethodGet, "/gallery"},
	{http.MethodPost, "/gallery"},
	{http.MethodDelete, "/gallery/1?confirm=true"},
	{http.MethodGet, "/feedback"},
	{http.MethodPatch, "/feedback/1/star"},
	{http.MethodPost, "/feedback/1/reply"},
	{http.MethodDelete, "/feedback/1?confirm=true"},
}

func TestProtectedRoutes_RejectWithoutSession(t *testing.T) {
	env := SetupTestServer(t)

	for _, route := range protectedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := doRequest(env.R, route.method, route.path, nil, nil)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			data := map[string]interface{}{}
			ParseData(t, rr, &data)
			assert.Equal(t, "/login", data["redirect"])
		})
	}
	assert.Empty(t, env.Clinic.Calls(), "no backend call may happen without a session")
}

func TestProtectedRoutes_BrowserIsRedirected(t *testing.T) {
	env := SetupTestServer(t)

	rr := doRequest(env.R, http.MethodGet, "/doctors", nil, map[string]string{"Accept": "text/html"})

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestProtectedRoutes_UnknownTokenRejected(t *testing.T) {
	env := SetupTestServer(t)

	rr := doRequest(env.R, http.MethodGet, "/doctors", nil, authed("forged-token"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, env.Clinic.Calls())
}

func TestSessionLifecycle_LogoutRevokesToken(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	env.Clinic.reply(http.MethodGet, "/doctors", http.StatusOK, []model.Doctor{{ID: "d1", Name: "Dr. Ada"}})

	rr := doRequest(env.R, http.MethodGet, "/doctors", nil, authed(token))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(env.R, http.MethodDelete, "/logout", nil, authed(token))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(env.R, http.MethodGet, "/doctors", nil, authed(token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Len(t, env.Clinic.CallsTo(http.MethodGet, "/doctors"), 1)

	var count int64
	env.DB.Model(&model.Session{}).Where("session_token = ?", token).Count(&count)
	assert.Zero(t, count)
}

func TestSessionCookieAccepted(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	env.Clinic.reply(http.MethodGet, "/doctors", http.StatusOK, []model.Doctor{})

	req := doRequest(env.R, http.MethodGet, "/doctors", nil, map[string]string{"Cookie": "session_token=" + token})

	assert.Equal(t, http.StatusOK, req.Code)
}

func TestValidateToken_Route(t *testing.T) {
	env, token := SetupServerWithOperator(t)

	rr := doRequest(env.R, http.MethodGet, "/token/validate", nil, authed(token))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	data := map[string]interface{}{}
	ParseData(t, rr, &data)
	assert.Equal(t, model.RoleAdmin, data["role"])

	rr = doRequest(env.R, http.MethodGet, "/token/validate", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRootIsPublic(t *testing.T) {
	env := SetupTestServer(t)

	rr := doRequest(env.R, http.MethodGet, "/", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
