package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"subhub/internal/logger"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NoError(t, ComparePasswords(hash, "secret123"))
	assert.Error(t, ComparePasswords(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("k", time.Hour)
	id := uuid.New()

	tok, err := m.CreateToken(id, "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("k", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	tok, err := m.CreateToken(uuid.New(), "user")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(tok)
	assert.Error(t, err)
}

func TestTokenWrongKey(t *testing.T) {
	tok, err := NewTokenManager("a", time.Hour).CreateToken(uuid.New(), "user")
	require.NoError(t, err)

	_, err = NewTokenManager("b", time.Hour).ValidateToken(tok)
	assert.Error(t, err)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, DaysUntil(now.Add(30*24*time.Hour), now))
	assert.Equal(t, 1, DaysUntil(now.Add(time.Hour), now))
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, -1, DaysUntil(now.Add(-25*time.Hour), now))
}

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{ErrPlanNotFound, http.StatusNotFound},
		{fmt.Errorf("renew: %w", ErrNoActiveSubscription), http.StatusNotFound},
		{ErrDuplicateActiveSubscription, http.StatusConflict},
		{ErrInvalidUsageValue, http.StatusBadRequest},
		{fmt.Errorf("%w: price must be >= 0", ErrValidation), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrPaymentFailed, http.StatusPaymentRequired},
		{ErrDatabaseError, http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		HandleServiceError(c, tc.err)

		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		var body APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Message)
	}
}

func TestHandleServiceErrorLogsRequestFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/subscriptions/current", nil)
	ctx := context.WithValue(req.Context(), logger.TraceIDKey, "trace-1")
	ctx = context.WithValue(ctx, logger.UserIDKey, "user-1")
	c.Request = req.WithContext(ctx)
	c.Set(logger.GinContextKey, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	HandleServiceError(c, fmt.Errorf("find active subscription: %w", ErrDatabaseError))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Contains(t, fields["error"], "find active subscription")
}
