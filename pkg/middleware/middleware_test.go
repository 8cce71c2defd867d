package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subhub/internal/logger"
	"subhub/internal/models/db_models"
	"subhub/internal/services"
	"subhub/pkg/metrics"
	"subhub/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator map[string]*services.Principal

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*services.Principal, error) {
	switch token {
	case "inactive":
		return nil, utils.ErrAccountInactive
	}
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, utils.ErrUnauthorized
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJWTAuthAndRole(t *testing.T) {
	userID := uuid.New()
	auth := stubAuthenticator{
		"user-token":  {UserID: userID, Role: db_models.RoleUser},
		"admin-token": {UserID: uuid.New(), Role: db_models.RoleAdmin},
	}

	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/me", JWTAuthMiddleware(auth), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		ctxUser, _ := c.Request.Context().Value(logger.UserIDKey).(string)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "ctx": ctxUser})
	})
	r.GET("/admin", JWTAuthMiddleware(auth), RoleMiddleware("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/me", "Bearer user-token")
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, userID.String(), got["id"])
	assert.Equal(t, userID.String(), got["ctx"])

	w = do("/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.TraceID)

	assert.Equal(t, http.StatusUnauthorized, do("/me", "Token user-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "Bearer nope").Code)

	w = do("/me", "Bearer inactive")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account is deactivated", decode(t, w).Message)

	assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer user-token").Code)
	assert.Equal(t, http.StatusNoContent, do("/admin", "Bearer admin-token").Code)
}

func TestTraceIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(logger.TraceIDKey).(string)
		c.String(http.StatusOK, fromCtx)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(TraceIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(TraceIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "not a uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(TraceIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/plans", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/plans", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestMetricsAndLoggingMiddleware(t *testing.T) {
	m := metrics.NewNop()
	r := gin.New()
	r.Use(LoggingMiddleware(logger.NewNop()), MetricsMiddleware(m))
	r.GET("/plans/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans/"+uuid.NewString(), nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/plans/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
