package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"valora/internal/models"
	"valora/internal/pipeline"
	"valora/internal/repository"
	"valora/internal/service"
)

// LeadsHandler serves lead CRUD, the kanban board and the status
// history view.
type LeadsHandler struct {
	Repo  repository.Repository
	Leads *service.LeadService
}

func (h *LeadsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/leads")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id/status", h.changeStatus)
	g.GET("/:id/history", h.history)

	p := r.Group("/api/v1/pipeline")
	p.GET("/columns", h.columns)
	p.GET("/board", h.board)
}

type createLeadRequest struct {
	ContactName   string `json:"contact_name" binding:"required,min=2"`
	CompanyName   string `json:"company_name" binding:"required,min=2"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"omitempty,esphone"`
	CIF           string `json:"cif" binding:"omitempty,cif"`
	OperationType string `json:"operation_type" binding:"required,oneof=venta compra"`
}

// @Summary Create a lead
// @Tags leads
// @Success 200 {object} apiResponse
// @Router /api/v1/leads [post]
func (h *LeadsHandler) create(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	lead := &models.Lead{
		ContactName:    strings.TrimSpace(req.ContactName),
		CompanyName:    strings.TrimSpace(req.CompanyName),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		CIF:            strings.ToUpper(strings.TrimSpace(req.CIF)),
		OperationType:  models.OperationType(req.OperationType),
		PipelineStatus: pipeline.StatusNueva,
	}
	if err := h.Repo.InsertLead(c.Request.Context(), lead); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, lead, nil)
}

// @Summary List and search leads
// @Tags leads
// @Success 200 {object} apiResponse
// @Router /api/v1/leads [get]
func (h *LeadsHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListLeadsParams{
		Limit:          limit,
		Offset:         offset,
		PipelineStatus: strQueryPtr(c, "status"),
		OperationType:  strQueryPtr(c, "operation"),
		Search:         strQueryPtr(c, "q"),
		OrderBy:        "created_at",
	}
	items, err := h.Repo.ListLeads(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountLeads(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get a lead
// @Tags leads
// @Param id path int true "lead id"
// @Success 200 {object} apiResponse
// @Router /api/v1/leads/{id} [get]
func (h *LeadsHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	lead, err := h.Repo.GetLeadByID(c.Request.Context(), uint64QueryParam(c, "id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if lead == nil {
		Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}
	Ok(c, lead, nil)
}

type changeLeadStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	Reason    string `json:"reason"`
	ChangedBy string `json:"changed_by"`
}

// @Summary Move a lead on the pipeline board
// @Tags leads
// @Param id path int true "lead id"
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/leads/{id}/status [put]
func (h *LeadsHandler) changeStatus(c *gin.Context) {
	if h.Leads == nil {
		Error(c, http.StatusInternalServerError, "lead service unavailable", nil)
		return
	}
	var req changeLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	lead, err := h.Leads.ChangeStatus(c.Request.Context(), uint64QueryParam(c, "id"),
		strings.TrimSpace(req.Status), strings.TrimSpace(req.Reason), strings.TrimSpace(req.ChangedBy))
	if err != nil {
		var refused *service.MoveRefusedError
		switch {
		case errors.As(err, &refused):
			Error(c, http.StatusConflict, refused.Reason, nil)
		case errors.Is(err, service.ErrUnknownStatus):
			Error(c, http.StatusBadRequest, "unknown pipeline status", nil)
		case errors.Is(err, service.ErrLeadNotFound):
			Error(c, http.StatusNotFound, "lead not found", nil)
		default:
			Error(c, http.StatusBadGateway, err.Error(), nil)
		}
		return
	}
	Ok(c, lead, nil)
}

// @Summary Status history for a lead
// @Tags leads
// @Param id path int true "lead id"
// @Success 200 {object} apiResponse
// @Router /api/v1/leads/{id}/history [get]
func (h *LeadsHandler) history(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListLeadStatusChanges(c.Request.Context(),
		uint64QueryParam(c, "id"), intQuery(c, "limit", 100))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Kanban column definitions
// @Tags pipeline
// @Success 200 {object} apiResponse
// @Router /api/v1/pipeline/columns [get]
func (h *LeadsHandler) columns(c *gin.Context) {
	Ok(c, pipeline.Columns(), nil)
}

// @Summary Kanban board: leads grouped by status
// @Tags pipeline
// @Success 200 {object} apiResponse
// @Router /api/v1/pipeline/board [get]
func (h *LeadsHandler) board(c *gin.Context) {
	if h.Leads == nil {
		Error(c, http.StatusInternalServerError, "lead service unavailable", nil)
		return
	}
	board, err := h.Leads.Board(c.Request.Context(), intQuery(c, "limit", 50))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, board, nil)
}
