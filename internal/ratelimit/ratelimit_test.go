package ratelimit

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func newTestRouter(t *testing.T, rate string) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	mw, err := newMiddleware(memory.NewStore(), rate, logger)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/login", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func login(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthLimiter_BlocksAfterLimit(t *testing.T) {
	router := newTestRouter(t, "2-M")

	assert.Equal(t, http.StatusOK, login(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, login(router, "10.0.0.1").Code)

	w := login(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"Too many requests, try again later"}`, w.Body.String())
}

func TestAuthLimiter_CountsPerClient(t *testing.T) {
	router := newTestRouter(t, "1-M")

	assert.Equal(t, http.StatusOK, login(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, login(router, "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, login(router, "10.0.0.1").Code)
}

func TestAuthLimiter_InvalidRate(t *testing.T) {
	_, err := newMiddleware(memory.NewStore(), "lots", logrus.New())

	assert.Error(t, err)
}
