package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"subhub/internal/models/request_models"
	"subhub/internal/services"
	"subhub/pkg/utils"
)

type PlanController struct {
	planService services.PlanServiceInterface
}

func NewPlanController(planService services.PlanServiceInterface) *PlanController {
	return &PlanController{
		planService: planService,
	}
}

func parsePlanID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid plan ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePlanFilter reads the list query. Empty parameters are ignored.
func parsePlanFilter(c *gin.Context) (request_models.PlanFilter, string) {
	var f request_models.PlanFilter
	f.Type = strings.TrimSpace(c.Query("type"))
	f.Provider = strings.TrimSpace(c.Query("provider"))

	if v := c.Query("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, "minPrice must be a number"
		}
		f.MinPrice = &d
	}
	if v := c.Query("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, "maxPrice must be a number"
		}
		f.MaxPrice = &d
	}
	if v := c.Query("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, "isActive must be true or false"
		}
		f.IsActive = &b
	}
	return f, ""
}

// ListPlans godoc
// @Summary List plans
// @Description Plans sorted by price ascending
// @Tags Plans
// @Produce json
// @Param type     query string false "Fibernet | Broadband Copper"
// @Param provider query string false "Case-insensitive substring"
// @Param minPrice query number false "Inclusive lower price bound"
// @Param maxPrice query number false "Inclusive upper price bound"
// @Param isActive query bool   false "Availability"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /plans [get]
func (p *PlanController) ListPlans(c *gin.Context) {
	filter, msg := parsePlanFilter(c)
	if msg != "" {
		utils.RespondError(c, http.StatusBadRequest, msg)
		return
	}

	plans, err := p.planService.ListPlans(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondList(c, plans, len(plans), "Plans fetched successfully")
}

// GetPlan godoc
// @Summary Get a plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /plans/{id} [get]
func (p *PlanController) GetPlan(c *gin.Context) {
	id, ok := parsePlanID(c)
	if !ok {
		return
	}

	plan, err := p.planService.GetPlanInfoById(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan fetched successfully")
}

// CreatePlan godoc
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body request_models.CreatePlanRequest true "Plan"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans [post]
func (p *PlanController) CreatePlan(c *gin.Context) {
	var req request_models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	plan, err := p.planService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, plan, "Plan created successfully")
}

// UpdatePlan godoc
// @Summary Update a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body request_models.UpdatePlanRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/{id} [put]
func (p *PlanController) UpdatePlan(c *gin.Context) {
	id, ok := parsePlanID(c)
	if !ok {
		return
	}

	var req request_models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	plan, err := p.planService.UpdatePlan(c.Request.Context(), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan updated successfully")
}

// DeletePlan godoc
// @Summary Delete a plan permanently
// @Description Prefer the toggle endpoint; subscriptions keep the plan id after deletion
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/{id} [delete]
func (p *PlanController) DeletePlan(c *gin.Context) {
	id, ok := parsePlanID(c)
	if !ok {
		return
	}

	if err := p.planService.DeletePlan(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Plan deleted successfully")
}

// TogglePlan godoc
// @Summary Flip plan availability
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/{id}/toggle [patch]
func (p *PlanController) TogglePlan(c *gin.Context) {
	id, ok := parsePlanID(c)
	if !ok {
		return
	}

	plan, err := p.planService.TogglePlanActive(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	msg := "Plan deactivated successfully"
	if plan.IsActive {
		msg = "Plan activated successfully"
	}
	utils.RespondSuccess(c, plan, msg)
}

// GetStats godoc
// @Summary Catalog statistics
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/stats/overview [get]
func (p *PlanController) GetStats(c *gin.Context) {
	stats, err := p.planService.GetPlanStats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, stats, "Plan statistics fetched successfully")
}
