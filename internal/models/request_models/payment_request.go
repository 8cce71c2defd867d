package request_models

import "github.com/google/uuid"

type SubscribeRequest struct {
	PlanID        uuid.UUID `json:"planId" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required"`
	TransactionID string    `json:"transactionId" validate:"required,max=128"`
}

type RenewRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	TransactionID string `json:"transactionId" validate:"required,max=128"`
}

type UpdateUsageRequest struct {
	Usage *float64 `json:"usage"`
}
