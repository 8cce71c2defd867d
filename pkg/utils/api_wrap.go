package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"subhub/internal/logger"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusOK, data, nil, message)
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusCreated, data, nil, message)
}

// RespondList writes a success envelope carrying the number of returned items.
func RespondList(c *gin.Context, data interface{}, count int, message string) {
	respond(c, http.StatusOK, data, &count, message)
}

func respond(c *gin.Context, code int, data interface{}, count *int, message string) {
	c.JSON(code, APIResponse{
		Success: true,
		Code:    code,
		Message: message,
		Count:   count,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Success: false,
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

type errorMapping struct {
	target  error
	code    int
	message string
}

// Order matters: the first matching sentinel wins.
var serviceErrors = []errorMapping{
	{ErrPlanNotFound, http.StatusNotFound, "Plan not found"},
	{ErrNoActiveSubscription, http.StatusNotFound, "No active subscription found"},
	{ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{ErrPlanInactive, http.StatusBadRequest, "Plan is not available for subscription"},
	{ErrInvalidUsageValue, http.StatusBadRequest, "Usage must be a non-negative number"},
	{ErrInvalidPaymentMethod, http.StatusBadRequest, "Payment method must be one of: upi, card, netbanking"},
	{ErrDuplicateActiveSubscription, http.StatusConflict, "User already has an active subscription"},
	{ErrEmailAlreadyExists, http.StatusConflict, "User already exists with this email"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{ErrAccountInactive, http.StatusUnauthorized, "Account is deactivated"},
	{ErrUnauthorized, http.StatusUnauthorized, "Not authenticated"},
	{ErrForbidden, http.StatusForbidden, "Forbidden: insufficient permissions"},
	{ErrPaymentFailed, http.StatusPaymentRequired, "Payment was not successful"},
}

func HandleServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			RespondError(c, m.code, m.message)
			return
		}
	}

	switch {
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDatabaseError):
		logger.FromGin(c).Errorw("database error", "error", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		logger.FromGin(c).Errorw("unhandled service error", "error", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
