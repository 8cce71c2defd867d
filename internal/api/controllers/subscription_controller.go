package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"subhub/internal/models/request_models"
	"subhub/internal/services"
	"subhub/pkg/middleware"
	"subhub/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionController(subscriptionService services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
	}
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.HandleServiceError(c, utils.ErrUnauthorized)
	}
	return id, ok
}

// GetCurrent godoc
// @Summary Current subscription
// @Description Returns the caller's active subscription, or null when there is none
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/current [get]
func (s *SubscriptionController) GetCurrent(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionService.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if sub == nil {
		utils.RespondSuccess(c, nil, "No active subscription")
		return
	}

	utils.RespondSuccess(c, sub, "Subscription fetched successfully")
}

// Subscribe godoc
// @Summary Subscribe to a plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.SubscribeRequest true "Plan and payment"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/subscribe [post]
func (s *SubscriptionController) Subscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sub, err := s.subscriptionService.Subscribe(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, sub, "Subscription created successfully")
}

// Cancel godoc
// @Summary Cancel the active subscription
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/cancel [put]
func (s *SubscriptionController) Cancel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionService.Cancel(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription cancelled successfully")
}

// Renew godoc
// @Summary Renew the active subscription for another 30 days
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.RenewRequest true "Payment"
// @Success 200 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/renew [put]
func (s *SubscriptionController) Renew(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sub, err := s.subscriptionService.Renew(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription renewed successfully")
}

// UpdateUsage godoc
// @Summary Record current data usage in GB
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.UpdateUsageRequest true "Usage in GB"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/usage [put]
func (s *SubscriptionController) UpdateUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.UpdateUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Usage == nil {
		utils.HandleServiceError(c, utils.ErrInvalidUsageValue)
		return
	}

	sub, err := s.subscriptionService.UpdateUsage(c.Request.Context(), userID, *req.Usage)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Usage updated successfully")
}

// GetUsage godoc
// @Summary Usage summary with plan recommendation
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/usage [get]
func (s *SubscriptionController) GetUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	usage, err := s.subscriptionService.GetUsage(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, usage, "Usage fetched successfully")
}

// GetHistory godoc
// @Summary All subscriptions of the caller, newest first
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/history [get]
func (s *SubscriptionController) GetHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	history, err := s.subscriptionService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondList(c, history, len(history), "Subscription history fetched successfully")
}
