package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/logger"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorHidesInternals(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter(&logs, "test", "info")

	r := gin.New()
	r.GET("/boom", func(ctx *gin.Context) {
		ctx.Set(types.ContextRequestIDKey, "req-9")
		RespondError(ctx, log, errors.New("pq: relation \"orders\" does not exist"))
	})
	r.GET("/missing", func(ctx *gin.Context) {
		RespondError(ctx, log, apperrors.NotFound(apperrors.CodeOrderNotFound, "Order %d not found", 7))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, w.Body.String())
	assert.Contains(t, logs.String(), `relation \"orders\" does not exist`)
	assert.Contains(t, logs.String(), `"request_id":"req-9"`)

	logs.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "ORDER_NOT_FOUND", env.Error.Code)
	assert.Equal(t, "Order 7 not found", env.Error.Message)
	assert.Empty(t, logs.String(), "client errors are not logged here")
}

func TestParamParsing(t *testing.T) {
	r := gin.New()
	r.GET("/orders/:id", func(ctx *gin.Context) {
		id, err := ParamID(ctx, "id")
		if err != nil {
			RespondError(ctx, logger.Discard(), err)
			return
		}
		page, err := QueryInt(ctx, "page")
		if err != nil {
			RespondError(ctx, logger.Discard(), err)
			return
		}
		Respond(ctx, http.StatusOK, gin.H{"id": id, "page": page})
	})

	cases := map[string]int{
		"/orders/12":         http.StatusOK,
		"/orders/12?page=3":  http.StatusOK,
		"/orders/0":          http.StatusBadRequest,
		"/orders/-4":         http.StatusBadRequest,
		"/orders/twelve":     http.StatusBadRequest,
		"/orders/12?page=-1": http.StatusBadRequest,
	}
	for path, status := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}

	_, err := GetCurrentUser(&gin.Context{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}
