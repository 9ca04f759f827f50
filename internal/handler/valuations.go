package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"valora/internal/repository"
	"valora/internal/service"
	"valora/internal/valuation"
)

// ValuationsHandler exposes the persistence wire operations directly:
// the progressive create/update pair keyed by the client token, the
// authoritative completion, and the back-office list and search views.
type ValuationsHandler struct {
	Repo   repository.Repository
	Writer *service.ValuationWriter
	Engine *valuation.Engine
	Table  valuation.MultipleTable
}

func (h *ValuationsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/valuations")
	g.POST("/initial", h.createInitial)
	g.GET("", h.list)
	g.GET("/:token", h.get)
	g.PUT("/:token", h.update)
	g.POST("/:token/complete", h.complete)
}

type initialValuationRequest struct {
	Token       string `json:"token" binding:"required"`
	ContactName string `json:"contact_name" binding:"required,min=2"`
	Email       string `json:"email" binding:"required,email"`
	CompanyName string `json:"company_name" binding:"required,min=2"`
}

// @Summary Create the initial valuation record
// @Tags valuations
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/initial [post]
func (h *ValuationsHandler) createInitial(c *gin.Context) {
	if h.Writer == nil {
		Error(c, http.StatusInternalServerError, "writer unavailable", nil)
		return
	}
	var req initialValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	token, err := h.Writer.CreateInitialValuation(c.Request.Context(), strings.TrimSpace(req.Token), valuation.IdentityFields{
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.TrimSpace(req.Email),
		CompanyName: strings.TrimSpace(req.CompanyName),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"token": token}, nil)
}

// @Summary Progressive update by token
// @Tags valuations
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/{token} [put]
func (h *ValuationsHandler) update(c *gin.Context) {
	if h.Writer == nil {
		Error(c, http.StatusInternalServerError, "writer unavailable", nil)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		Error(c, http.StatusBadRequest, "invalid token", nil)
		return
	}
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	snap := make(valuation.Snapshot, len(req))
	for k, v := range req {
		snap[valuation.Field(k)] = v
	}
	if err := h.Writer.UpdateValuation(c.Request.Context(), token, snap); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"token": token}, nil)
}

type completeValuationRequest struct {
	ContactName string `json:"contact_name" binding:"required,min=2"`
	CompanyName string `json:"company_name" binding:"required,min=2"`
	CIF         string `json:"cif" binding:"required,cif"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required,esphone"`

	Industry         string `json:"industry" binding:"required"`
	EmployeeRange    string `json:"employee_range" binding:"required"`
	YearsOfOperation int    `json:"years_of_operation"`

	Revenue          decimal.Decimal `json:"revenue"`
	EBITDA           decimal.Decimal `json:"ebitda"`
	HasAdjustments   bool            `json:"has_adjustments"`
	AdjustmentAmount decimal.Decimal `json:"adjustment_amount"`

	Location               string `json:"location" binding:"required"`
	OwnershipParticipation string `json:"ownership_participation" binding:"required,oneof=alta media baja"`
	CompetitiveAdvantage   string `json:"competitive_advantage"`
}

// @Summary Complete a valuation: compute and persist the final result
// @Tags valuations
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/{token}/complete [post]
func (h *ValuationsHandler) complete(c *gin.Context) {
	if h.Writer == nil || h.Engine == nil || h.Table == nil {
		Error(c, http.StatusInternalServerError, "valuation engine unavailable", nil)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		Error(c, http.StatusBadRequest, "invalid token", nil)
		return
	}
	var req completeValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	in := valuation.Input{
		ContactName:            strings.TrimSpace(req.ContactName),
		CompanyName:            strings.TrimSpace(req.CompanyName),
		CIF:                    strings.ToUpper(strings.TrimSpace(req.CIF)),
		Email:                  strings.TrimSpace(req.Email),
		Phone:                  strings.TrimSpace(req.Phone),
		Industry:               strings.TrimSpace(req.Industry),
		EmployeeRange:          strings.TrimSpace(req.EmployeeRange),
		YearsOfOperation:       req.YearsOfOperation,
		Revenue:                req.Revenue,
		EBITDA:                 req.EBITDA,
		HasAdjustments:         req.HasAdjustments,
		AdjustmentAmount:       req.AdjustmentAmount,
		Location:               strings.TrimSpace(req.Location),
		OwnershipParticipation: strings.TrimSpace(req.OwnershipParticipation),
		CompetitiveAdvantage:   strings.TrimSpace(req.CompetitiveAdvantage),
	}
	result, err := h.Engine.Compute(c.Request.Context(), in, h.Table)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if err := h.Writer.SaveValuation(c.Request.Context(), token, in, result); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{
		"token":                token,
		"final_valuation":      result.FinalValuation,
		"valuation_low":        result.ValuationLow,
		"valuation_high":       result.ValuationHigh,
		"ebitda_multiple_used": result.EBITDAMultipleUsed,
	}, nil)
}

// @Summary Get a valuation by token
// @Tags valuations
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/{token} [get]
func (h *ValuationsHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	item, err := h.Repo.GetValuationByToken(c.Request.Context(), token)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "valuation not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary List and search valuations
// @Tags valuations
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations [get]
func (h *ValuationsHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListValuationsParams{
		Limit:     limit,
		Offset:    offset,
		Completed: boolQueryPtr(c, "completed"),
		Abandoned: boolQueryPtr(c, "abandoned"),
		Industry:  strQueryPtr(c, "industry"),
		Search:    strQueryPtr(c, "q"),
		OrderBy:   "created_at",
	}
	items, err := h.Repo.ListValuations(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountValuations(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
