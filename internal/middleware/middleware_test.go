package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/auth"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/logger"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/testutil"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.Envelope {
	t.Helper()
	var env utils.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthMiddlewareTokenSources(t *testing.T) {
	gdb := testutil.NewDB(t)
	chef := testutil.CreateUser(t, gdb, "Carla Chef", "carla@mayfair.test", types.RoleChef)
	verifier, err := auth.NewVerifier("test-secret")
	require.NoError(t, err)
	token, err := verifier.Generate(chef.ID, chef.Email, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier, gdb, logger.Discard()), func(ctx *gin.Context) {
		id, err := utils.GetCurrentUser(ctx)
		require.NoError(t, err)
		utils.Respond(ctx, http.StatusOK, id.Response())
	})

	requests := map[string]func(*http.Request){
		"header": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) },
		"query":  func(r *http.Request) { r.URL.RawQuery = "token=" + token },
	}
	for name, prepare := range requests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			prepare(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			env := decode(t, w)
			assert.True(t, env.Success)
			assert.Equal(t, "chef", env.Data.(map[string]any)["role"])
		})
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	gdb := testutil.NewDB(t)
	user := testutil.CreateUser(t, gdb, "Gone", "gone@mayfair.test", types.RoleWaiter)
	require.NoError(t, gdb.Model(&user).Update("is_active", false).Error)
	verifier, _ := auth.NewVerifier("test-secret")
	inactive, _ := verifier.Generate(user.ID, user.Email, time.Hour)

	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier, gdb, logger.Discard()), func(ctx *gin.Context) {
		t.Fatal("handler must not run")
	})

	cases := map[string]string{
		"":                   "Authorization token is required",
		"Token abc":          "Authorization header format must be Bearer {token}",
		"Bearer garbage":     "Invalid or expired token",
		"Bearer " + inactive: "User not found",
	}
	for header, message := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		assert.Equal(t, message, env.Error.Message)
	}
}

func TestRequestIDAndRateLimit(t *testing.T) {
	limit, err := RateLimit("2-M", logger.Discard())
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), AccessLog(logger.Discard()), limit)
	r.GET("/ping", func(ctx *gin.Context) { utils.Respond(ctx, http.StatusOK, ctx.GetString(types.ContextRequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-1", decode(t, w).Data)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, w).Error.Code)

	_, err = RateLimit("lots", logger.Discard())
	assert.Error(t, err)
}

func TestRecoveryRespondsWithEnvelope(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter(&logs, "test", "info")

	r := gin.New()
	r.Use(Recovery(log), RequestID())
	r.GET("/boom", func(ctx *gin.Context) { panic("nil map write") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-panic")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, w.Body.String())
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "nil map write")
	assert.Contains(t, logs.String(), `"request_id":"req-panic"`)
}
