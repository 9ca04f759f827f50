package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/pipeline"
	"valora/internal/repository"
	"valora/internal/service"
)

// AnalyticsHandler serves the dashboard counts.
type AnalyticsHandler struct {
	Repo  repository.Repository
	Flags *service.SystemSettingsService
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/analytics")
	g.GET("/overview", h.overview)
	g.GET("/pipeline", h.pipelineCounts)
}

// @Summary Valuation funnel overview
// @Tags analytics
// @Success 200 {object} apiResponse
// @Router /api/v1/analytics/overview [get]
func (h *AnalyticsHandler) overview(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	if h.Flags != nil && !h.Flags.IsEnabled(c.Request.Context(), service.FeatureAnalyticsEndpoints, true) {
		Error(c, http.StatusServiceUnavailable, "analytics disabled", nil)
		return
	}
	ov, err := h.Repo.ValuationsOverview(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, ov, nil)
}

// @Summary Lead counts per pipeline status
// @Tags analytics
// @Success 200 {object} apiResponse
// @Router /api/v1/analytics/pipeline [get]
func (h *AnalyticsHandler) pipelineCounts(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	if h.Flags != nil && !h.Flags.IsEnabled(c.Request.Context(), service.FeatureAnalyticsEndpoints, true) {
		Error(c, http.StatusServiceUnavailable, "analytics disabled", nil)
		return
	}
	counts, err := h.Repo.CountLeadsByStatus(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	// Every board column appears, empty ones at zero.
	out := make([]map[string]any, 0, len(pipeline.Statuses()))
	for _, status := range pipeline.Statuses() {
		out = append(out, map[string]any{
			"status": status,
			"count":  counts[status],
		})
	}
	Ok(c, out, nil)
}
