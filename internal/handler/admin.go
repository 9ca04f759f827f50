package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"valora/internal/models"
	"valora/internal/repository"
	"valora/internal/service"
)

// AdminHandler covers the configuration surfaces: the sector multiple
// table and the workflow rules.
type AdminHandler struct {
	Repo      repository.Repository
	Multiples *service.SectorMultiplesService
	Rules     *service.WorkflowRulesService
}

func (h *AdminHandler) Register(r *gin.Engine) {
	m := r.Group("/api/v1/admin/multiples")
	m.GET("", h.listMultiples)
	m.PUT("", h.putMultiple)
	m.DELETE("", h.deleteMultiple)

	w := r.Group("/api/v1/admin/workflow-rules")
	w.GET("", h.listRules)
	w.POST("", h.putRule)
	w.PUT("/:id/active", h.setRuleActive)
}

// @Summary List sector multiples
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/multiples [get]
func (h *AdminHandler) listMultiples(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListSectorMultiples(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type putMultipleRequest struct {
	Sector        string          `json:"sector" binding:"required"`
	EmployeeRange string          `json:"employee_range"`
	Multiple      decimal.Decimal `json:"multiple" binding:"required"`
}

// @Summary Upsert a sector multiple
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/multiples [put]
func (h *AdminHandler) putMultiple(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req putMultipleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if !req.Multiple.IsPositive() {
		Error(c, http.StatusBadRequest, "multiple must be positive", nil)
		return
	}
	item := &models.SectorMultiple{
		Sector:        strings.TrimSpace(req.Sector),
		EmployeeRange: strings.TrimSpace(req.EmployeeRange),
		Multiple:      req.Multiple,
	}
	if err := h.Repo.UpsertSectorMultiple(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if h.Multiples != nil {
		h.Multiples.Invalidate(c.Request.Context(), item.Sector, item.EmployeeRange)
	}
	Ok(c, item, nil)
}

// @Summary Delete a sector multiple
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/multiples [delete]
func (h *AdminHandler) deleteMultiple(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	sector := strings.TrimSpace(c.Query("sector"))
	if sector == "" {
		Error(c, http.StatusBadRequest, "sector required", nil)
		return
	}
	employeeRange := strings.TrimSpace(c.Query("employee_range"))
	if err := h.Repo.DeleteSectorMultiple(c.Request.Context(), sector, employeeRange); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if h.Multiples != nil {
		h.Multiples.Invalidate(c.Request.Context(), sector, employeeRange)
	}
	Ok(c, map[string]any{"sector": sector, "employee_range": employeeRange}, nil)
}

// @Summary List workflow rules
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/workflow-rules [get]
func (h *AdminHandler) listRules(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	includeInactive := intQuery(c, "include_inactive", 0) == 1
	items, err := h.Repo.ListWorkflowRules(c.Request.Context(), includeInactive)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type putRuleRequest struct {
	ID                uint64 `json:"id"`
	RuleType          string `json:"rule_type" binding:"required,oneof=blocking auto_suggest"`
	TargetStatus      string `json:"target_status"`
	RequiredDocument  string `json:"required_document"`
	Reason            string `json:"reason"`
	OperationType     string `json:"operation_type" binding:"omitempty,oneof=venta compra"`
	SuggestedDocument string `json:"suggested_document"`
	Active            bool   `json:"active"`
}

// @Summary Create or update a workflow rule
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/workflow-rules [post]
func (h *AdminHandler) putRule(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req putRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	item := &models.WorkflowRule{
		ID:                req.ID,
		RuleType:          req.RuleType,
		TargetStatus:      strings.TrimSpace(req.TargetStatus),
		RequiredDocument:  models.DocumentType(strings.TrimSpace(req.RequiredDocument)),
		Reason:            strings.TrimSpace(req.Reason),
		OperationType:     models.OperationType(req.OperationType),
		SuggestedDocument: models.DocumentType(strings.TrimSpace(req.SuggestedDocument)),
		Active:            req.Active,
	}
	if err := h.Repo.UpsertWorkflowRule(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if h.Rules != nil {
		h.Rules.Invalidate(c.Request.Context())
	}
	Ok(c, item, nil)
}

type setRuleActiveRequest struct {
	Active bool `json:"active"`
}

// @Summary Enable or disable a workflow rule
// @Tags admin
// @Param id path int true "rule id"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/workflow-rules/{id}/active [put]
func (h *AdminHandler) setRuleActive(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req setRuleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if err := h.Repo.SetWorkflowRuleActive(c.Request.Context(), id, req.Active); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if h.Rules != nil {
		h.Rules.Invalidate(c.Request.Context())
	}
	rule, _ := h.Repo.GetWorkflowRuleByID(c.Request.Context(), id)
	Ok(c, rule, nil)
}
