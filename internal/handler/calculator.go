package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"valora/internal/service"
	"valora/internal/valuation"
)

// CalculatorHandler exposes the wizard over HTTP: one session per
// client, addressed by the autosave token.
type CalculatorHandler struct {
	Sessions *service.SessionManager
}

func (h *CalculatorHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/calculator/sessions")
	g.POST("", h.create)
	g.GET("/:token", h.get)
	g.PUT("/:token/fields", h.updateFields)
	g.POST("/:token/blur", h.blur)
	g.POST("/:token/next", h.next)
	g.POST("/:token/back", h.back)
	g.POST("/:token/reset", h.reset)
}

type sessionState struct {
	Token       string            `json:"token"`
	Step        int               `json:"step"`
	Calculating bool              `json:"calculating"`
	StepValid   bool              `json:"step_valid"`
	DataSaved   bool              `json:"data_saved"`
	Errors      map[string]string `json:"errors,omitempty"`
	Result      *sessionResult    `json:"result,omitempty"`
}

type sessionResult struct {
	FinalValuation     decimal.Decimal `json:"final_valuation"`
	ValuationLow       decimal.Decimal `json:"valuation_low"`
	ValuationHigh      decimal.Decimal `json:"valuation_high"`
	EBITDAMultipleUsed decimal.Decimal `json:"ebitda_multiple_used"`
}

func stateOf(sess *service.Session) sessionState {
	calc := sess.Calculator
	state := sessionState{
		Token:       sess.Saver.Token(),
		Step:        int(calc.CurrentStep()),
		Calculating: calc.IsCalculating(),
		StepValid:   calc.IsCurrentStepValid(),
		DataSaved:   sess.Saver.DataSaved(),
	}
	errs := map[string]string{}
	for field := range calc.Snapshot() {
		if msg := calc.FieldError(field); msg != "" {
			errs[string(field)] = msg
		}
	}
	if len(errs) > 0 {
		state.Errors = errs
	}
	if r := calc.Result(); r != nil {
		state.Result = &sessionResult{
			FinalValuation:     r.FinalValuation,
			ValuationLow:       r.ValuationLow,
			ValuationHigh:      r.ValuationHigh,
			EBITDAMultipleUsed: r.EBITDAMultipleUsed,
		}
	}
	return state
}

// @Summary Start a calculator session
// @Tags calculator
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions [post]
func (h *CalculatorHandler) create(c *gin.Context) {
	if h.Sessions == nil {
		Error(c, http.StatusInternalServerError, "session manager unavailable", nil)
		return
	}
	sess, err := h.Sessions.NewSession()
	if err == service.ErrTooManySessions {
		Error(c, http.StatusTooManyRequests, "too many open sessions", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, stateOf(sess), nil)
}

func (h *CalculatorHandler) session(c *gin.Context) (*service.Session, bool) {
	if h.Sessions == nil {
		Error(c, http.StatusInternalServerError, "session manager unavailable", nil)
		return nil, false
	}
	token := strings.TrimSpace(c.Param("token"))
	sess, ok := h.Sessions.Get(token)
	if !ok {
		Error(c, http.StatusNotFound, "session not found", nil)
		return nil, false
	}
	return sess, true
}

// @Summary Session state
// @Tags calculator
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions/{token} [get]
func (h *CalculatorHandler) get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	Ok(c, stateOf(sess), nil)
}

// @Summary Update field values
// @Tags calculator
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions/{token}/fields [put]
func (h *CalculatorHandler) updateFields(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	for field, value := range req {
		sess.Calculator.UpdateField(valuation.Field(field), value)
	}
	Ok(c, stateOf(sess), nil)
}

type blurRequest struct {
	Field string `json:"field" binding:"required"`
}

// @Summary Mark a field touched
// @Tags calculator
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions/{token}/blur [post]
func (h *CalculatorHandler) blur(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req blurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	sess.Calculator.HandleFieldBlur(valuation.Field(req.Field))
	Ok(c, stateOf(sess), nil)
}

// @Summary Advance the wizard
// @Tags calculator
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions/{token}/next [post]
func (h *CalculatorHandler) next(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	advanced, err := sess.Calculator.NextStep(c.Request.Context())
	if err != nil {
		// The save-of-record failed; the step change (if any) stands but
		// the caller must see the error.
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{
			"advanced": advanced,
			"step":     int(sess.Calculator.CurrentStep()),
		})
		return
	}
	Ok(c, stateOf(sess), map[string]any{"advanced": advanced})
}

// @Summary Go back one step
// @Tags calculator
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions/{token}/back [post]
func (h *CalculatorHandler) back(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	moved := sess.Calculator.PrevStep()
	Ok(c, stateOf(sess), map[string]any{"moved": moved})
}

// @Summary Reset the session
// @Tags calculator
// @Param token path string true "session token"
// @Success 200 {object} apiResponse
// @Router /api/v1/calculator/sessions/{token}/reset [post]
func (h *CalculatorHandler) reset(c *gin.Context) {
	if h.Sessions == nil {
		Error(c, http.StatusInternalServerError, "session manager unavailable", nil)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	sess, ok := h.Sessions.Reset(token)
	if !ok {
		Error(c, http.StatusNotFound, "session not found", nil)
		return
	}
	Ok(c, stateOf(sess), nil)
}
