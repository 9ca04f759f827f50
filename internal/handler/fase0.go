package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"valora/internal/fase0"
	"valora/internal/models"
	"valora/internal/repository"
	"valora/internal/service"
)

// Fase0Handler serves the document workflow: the per-lead overview, the
// document list, generation and lifecycle moves.
type Fase0Handler struct {
	Repo      repository.Repository
	Engine    *fase0.Engine
	Documents *service.Fase0DocumentService
}

func (h *Fase0Handler) Register(r *gin.Engine) {
	r.GET("/api/v1/leads/:id/fase0", h.overview)
	r.POST("/api/v1/leads/:id/fase0/documents", h.createDocument)
	g := r.Group("/api/v1/fase0/documents")
	g.GET("", h.listDocuments)
	g.GET("/:id", h.getDocument)
	g.PUT("/:id/status", h.changeStatus)
}

// @Summary Fase 0 overview for a lead
// @Tags fase0
// @Param id path int true "lead id"
// @Success 200 {object} apiResponse
// @Router /api/v1/leads/{id}/fase0 [get]
func (h *Fase0Handler) overview(c *gin.Context) {
	if h.Repo == nil || h.Engine == nil {
		Error(c, http.StatusInternalServerError, "workflow engine unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	lead, err := h.Repo.GetLeadByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if lead == nil {
		Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}
	ov, err := h.Engine.Overview(c.Request.Context(), *lead)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, ov, nil)
}

type createDocumentRequest struct {
	DocumentType string         `json:"document_type"`
	FilledData   map[string]any `json:"filled_data"`
}

// @Summary Generate a Fase 0 document for a lead
// @Tags fase0
// @Param id path int true "lead id"
// @Success 200 {object} apiResponse
// @Router /api/v1/leads/{id}/fase0/documents [post]
func (h *Fase0Handler) createDocument(c *gin.Context) {
	if h.Documents == nil {
		Error(c, http.StatusInternalServerError, "document service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	var filled datatypes.JSON
	if len(req.FilledData) > 0 {
		raw, err := json.Marshal(req.FilledData)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid filled_data", nil)
			return
		}
		filled = datatypes.JSON(raw)
	}
	doc, err := h.Documents.CreateDocument(c.Request.Context(), id,
		models.DocumentType(strings.TrimSpace(req.DocumentType)), filled)
	if err != nil {
		var refused *service.GenerationRefusedError
		switch {
		case errors.As(err, &refused):
			Error(c, http.StatusConflict, refused.Reason, nil)
		case errors.Is(err, service.ErrLeadNotFound):
			Error(c, http.StatusNotFound, "lead not found", nil)
		case errors.Is(err, service.ErrUnknownDocument):
			Error(c, http.StatusBadRequest, "unknown document type", nil)
		default:
			Error(c, http.StatusBadGateway, err.Error(), nil)
		}
		return
	}
	Ok(c, doc, nil)
}

// @Summary List Fase 0 documents
// @Tags fase0
// @Success 200 {object} apiResponse
// @Router /api/v1/fase0/documents [get]
func (h *Fase0Handler) listDocuments(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListDocumentsParams{
		Limit:        limit,
		Offset:       offset,
		DocumentType: strQueryPtr(c, "type"),
		Status:       strQueryPtr(c, "status"),
		OrderBy:      "created_at",
	}
	if leadID := intQuery(c, "lead_id", 0); leadID > 0 {
		id := uint64(leadID)
		params.LeadID = &id
	}
	items, err := h.Repo.ListFase0Documents(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountFase0Documents(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get a document
// @Tags fase0
// @Param id path int true "document id"
// @Success 200 {object} apiResponse
// @Router /api/v1/fase0/documents/{id} [get]
func (h *Fase0Handler) getDocument(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	doc, err := h.Repo.GetFase0DocumentByID(c.Request.Context(), uint64QueryParam(c, "id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if doc == nil {
		Error(c, http.StatusNotFound, "document not found", nil)
		return
	}
	Ok(c, doc, nil)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Move a document through its lifecycle
// @Tags fase0
// @Param id path int true "document id"
// @Success 200 {object} apiResponse
// @Router /api/v1/fase0/documents/{id}/status [put]
func (h *Fase0Handler) changeStatus(c *gin.Context) {
	if h.Documents == nil {
		Error(c, http.StatusInternalServerError, "document service unavailable", nil)
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	doc, err := h.Documents.ChangeStatus(c.Request.Context(), uint64QueryParam(c, "id"),
		models.DocumentStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		var illegal *fase0.TransitionError
		switch {
		case errors.As(err, &illegal):
			Error(c, http.StatusConflict, illegal.Error(), nil)
		case errors.Is(err, service.ErrDocumentNotFound):
			Error(c, http.StatusNotFound, "document not found", nil)
		default:
			Error(c, http.StatusBadGateway, err.Error(), nil)
		}
		return
	}
	Ok(c, doc, nil)
}
