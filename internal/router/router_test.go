package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/config"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/handler"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/middleware"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/repository"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/service"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/database"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/health"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminCode = "letmein"

func newTestRouter(t *testing.T, adjust ...func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:   config.AppConfig{Name: constants.ServiceName, Environment: "test", Timeout: 5 * time.Second},
		JWT:   config.JWTConfig{Secret: "router-test-secret", ExpirationTime: time.Hour},
		Auth:  config.AuthConfig{BcryptCost: 4, ShortTokenLength: 12},
		Admin: config.AdminConfig{Code: adminCode},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Database: config.DatabaseConfig{
			URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		},
	}
	for _, fn := range adjust {
		fn(cfg)
	}

	db, err := database.Open(cfg.Database, cfg.App.Environment)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.CloseDB(db) })

	m := metrics.New()
	revocations := service.NewRevocationService(repository.NewRevokedTokenRepository(db),
		service.WithRevocationMetrics(m))
	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewTransactor(db),
		revocations,
		service.NewPasswordHasher(cfg.Auth.BcryptCost),
		service.NewJWTService(cfg.JWT),
		cfg.Auth.ShortTokenLength,
	)

	monitor := health.NewMonitor(time.Minute, nil)
	monitor.Register("database", &health.PingChecker{Ping: func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}}, true)
	monitor.Register("redis", &health.PingChecker{}, false)

	adminHandler, err := handler.NewAdminHandler(authService)
	require.NoError(t, err)

	r := NewRouter(
		handler.NewAuthHandler(authService, m),
		handler.NewHealthHandler(monitor),
		adminHandler,
		middleware.NewValidationMiddleware(),
		m,
		cfg,
	)
	return r.SetupRoutes()
}

func do(t *testing.T, engine *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func register(t *testing.T, engine *gin.Engine, email, password, name string) map[string]interface{} {
	t.Helper()
	w := do(t, engine, http.MethodPost, "/auth/register", gin.H{"email": email, "password": password, "name": name}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

func login(t *testing.T, engine *gin.Engine, email, password string) string {
	t.Helper()
	w := do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func TestAuthFlow_RegisterLoginVerify(t *testing.T) {
	engine := newTestRouter(t)

	created := register(t, engine, "bob@x.com", "pass1234", "Bob")
	assert.Equal(t, constants.MsgUserCreated, created["message"])
	assert.NotEmpty(t, created["short_token"])

	w := do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "BOB@x.com", "password": "pass1234"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	loggedIn := decode(t, w)
	assert.Equal(t, constants.MsgLoginSuccessful, loggedIn["message"])
	assert.Equal(t, created["user_id"], loggedIn["user_id"])
	assert.Equal(t, created["short_token"], loggedIn["short_token"])

	w = do(t, engine, http.MethodGet, "/auth/verify", nil, bearer(loggedIn["token"].(string)))
	require.Equal(t, http.StatusOK, w.Code)
	verified := decode(t, w)
	assert.Equal(t, true, verified["valid"])
	user := verified["user"].(map[string]interface{})
	assert.Equal(t, "bob@x.com", user["email"])
	assert.Equal(t, "Bob", user["name"])

	w = do(t, engine, http.MethodGet, "/auth/user-by-short/"+created["short_token"].(string), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode(t, w)
	assert.Equal(t, "bob@x.com", public["email"])
	assert.Equal(t, created["user_id"], public["id"])
	assert.NotContains(t, public, "password_hash")
}

func TestRegister_Errors(t *testing.T) {
	engine := newTestRouter(t)
	register(t, engine, "alice@x.com", "secret1", "Alice")

	tests := []struct {
		name     string
		body     interface{}
		raw      string
		wantCode int
		wantErr  string
	}{
		{"duplicate email", gin.H{"email": " ALICE@x.com ", "password": "secret1", "name": "A"}, "", http.StatusConflict, "Email already exists"},
		{"missing fields", gin.H{"email": "new@x.com"}, "", http.StatusBadRequest, "All fields are required"},
		{"short password", gin.H{"email": "new@x.com", "password": "abc", "name": "N"}, "", http.StatusBadRequest, "Password must be at least 6 characters"},
		{"password over 72 bytes", gin.H{"email": "new@x.com", "password": strings.Repeat("p", 73), "name": "N"}, "", http.StatusBadRequest, "Password must be at most 72 bytes"},
		{"multibyte password over 72 bytes", gin.H{"email": "new@x.com", "password": strings.Repeat("€", 25), "name": "N"}, "", http.StatusBadRequest, "Password must be at most 72 bytes"},
		{"malformed json", nil, "{not json", http.StatusBadRequest, constants.MsgInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.raw != "" {
				req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.raw))
				w = httptest.NewRecorder()
				engine.ServeHTTP(w, req)
			} else {
				w = do(t, engine, http.MethodPost, "/auth/register", tt.body, nil)
			}

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decode(t, w)["error"])
		})
	}
}

func TestRegister_MultibytePasswordAtByteLimit(t *testing.T) {
	engine := newTestRouter(t)
	password := strings.Repeat("€", 24)

	register(t, engine, "ivan@x.com", password, "Ivan")
	login(t, engine, "ivan@x.com", password)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	engine := newTestRouter(t)
	register(t, engine, "carol@x.com", "secret1", "Carol")

	wrong := do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "carol@x.com", "password": "nope123"}, nil)
	unknown := do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "nobody@x.com", "password": "nope123"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())

	for _, password := range []string{strings.Repeat("x", 73), strings.Repeat("€", 30)} {
		long := do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "carol@x.com", "password": password}, nil)
		assert.Equal(t, http.StatusUnauthorized, long.Code)
		assert.JSONEq(t, wrong.Body.String(), long.Body.String())
	}

	missing := do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "carol@x.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestBearerRoutes_RequireHeader(t *testing.T) {
	engine := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/auth/logout"},
		{http.MethodPost, "/auth/delete-account"},
		{http.MethodGet, "/auth/verify"},
	}
	headers := []map[string]string{
		nil,
		{"Authorization": "Basic abc"},
		{"Authorization": "Bearer "},
	}

	for _, route := range routes {
		for _, h := range headers {
			w := do(t, engine, route.method, route.path, nil, h)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s %v", route.method, route.path, h)
			assert.Equal(t, constants.MsgNoTokenProvided, decode(t, w)["error"])
		}
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	engine := newTestRouter(t)
	register(t, engine, "dave@x.com", "secret1", "Dave")
	token := login(t, engine, "dave@x.com", "secret1")

	w := do(t, engine, http.MethodPost, "/auth/logout", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constants.MsgLogoutSuccessful, decode(t, w)["message"])

	w = do(t, engine, http.MethodGet, "/auth/verify", nil, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, engine, http.MethodPost, "/auth/logout", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constants.MsgAlreadyLoggedOut, decode(t, w)["message"])

	w = do(t, engine, http.MethodPost, "/auth/logout", nil, bearer("not-a-jwt"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constants.MsgAlreadyLoggedOutOrIn, decode(t, w)["message"])
}

func TestDeleteAccount(t *testing.T) {
	engine := newTestRouter(t)
	created := register(t, engine, "erin@x.com", "secret1", "Erin")
	token := login(t, engine, "erin@x.com", "secret1")

	w := do(t, engine, http.MethodPost, "/auth/delete-account", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, constants.MsgAccountDeleted, body["message"])
	assert.Equal(t, "erin@x.com", body["user"].(map[string]interface{})["email"])

	w = do(t, engine, http.MethodPost, "/auth/delete-account", nil, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "erin@x.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, engine, http.MethodGet, "/auth/user-by-short/"+created["short_token"].(string), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExists(t *testing.T) {
	engine := newTestRouter(t)
	register(t, engine, "frank@x.com", "secret1", "Frank")

	w := do(t, engine, http.MethodGet, "/auth/exists?email=FRANK@x.com", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"email taken","exists":true}`, w.Body.String())

	w = do(t, engine, http.MethodGet, "/auth/exists?email=ghost@x.com", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"email available","exists":false}`, w.Body.String())

	w = do(t, engine, http.MethodGet, "/auth/exists", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constants.MsgNoEmailProvided, decode(t, w)["error"])
}

func TestUserByShortToken_Unknown(t *testing.T) {
	engine := newTestRouter(t)

	w := do(t, engine, http.MethodGet, "/auth/user-by-short/doesnotexist", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode(t, w)["error"])
}

func TestCORS(t *testing.T) {
	engine := newTestRouter(t)

	w := do(t, engine, http.MethodOptions, "/auth/login", nil, map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = do(t, engine, http.MethodGet, "/auth/exists?email=a@x.com", nil, map[string]string{
		"Origin": "http://evil.example",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminPages(t *testing.T) {
	engine := newTestRouter(t)
	register(t, engine, "grace@x.com", "secret1", "Grace <admin>")

	w := do(t, engine, http.MethodGet, "/admin/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, engine, http.MethodGet, "/admin/users?code=wrong", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, engine, http.MethodGet, "/admin/users?code="+adminCode, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "grace@x.com")
	assert.Contains(t, w.Body.String(), "Grace &lt;admin&gt;")

	w = do(t, engine, http.MethodGet, "/admin/users?search=nomatch", nil, map[string]string{
		constants.HeaderXAdminCode: adminCode,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "grace@x.com")
	assert.Contains(t, w.Body.String(), "No users")

	w = do(t, engine, http.MethodGet, "/admin?code="+adminCode, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "register-form")
}

func TestAdminPages_DisabledWithoutCode(t *testing.T) {
	engine := newTestRouter(t, func(cfg *config.Config) { cfg.Admin.Code = "" })

	w := do(t, engine, http.MethodGet, "/admin/users?code=", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	engine := newTestRouter(t)

	w := do(t, engine, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"auth-microservice"}`, w.Body.String())

	w = do(t, engine, http.MethodGet, "/health/detailed", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"].(map[string]interface{})["status"])
	assert.Equal(t, "disabled", checks["redis"].(map[string]interface{})["status"])
}

func TestRequestIDEchoed(t *testing.T) {
	engine := newTestRouter(t)

	w := do(t, engine, http.MethodGet, "/health", nil, map[string]string{constants.HeaderXRequestID: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(constants.HeaderXRequestID))

	w = do(t, engine, http.MethodGet, "/health", nil, nil)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestRouter(t)
	register(t, engine, "heidi@x.com", "secret1", "Heidi")
	do(t, engine, http.MethodPost, "/auth/login", gin.H{"email": "heidi@x.com", "password": "wrong12"}, nil)

	w := do(t, engine, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `auth_operations_total{operation="register",outcome="success"} 1`)
	assert.Contains(t, body, `auth_operations_total{operation="login",outcome="invalid_credentials"} 1`)
	assert.Contains(t, body, `auth_http_requests_total{method="POST",route="/auth/register",status="201"} 1`)
}
