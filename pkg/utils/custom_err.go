package utils

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrDatabaseError = errors.New("database error")

	ErrPlanNotFound = errors.New("plan not found")
	ErrPlanInactive = errors.New("plan is inactive")

	ErrDuplicateActiveSubscription = errors.New("user already has an active subscription")
	ErrNoActiveSubscription        = errors.New("no active subscription")
	ErrInvalidUsageValue           = errors.New("invalid usage value")
	ErrInvalidPaymentMethod        = errors.New("invalid payment method")
	ErrPaymentFailed               = errors.New("payment failed")

	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)
