package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"valora/internal/models"
	"valora/internal/pipeline"
	"valora/internal/repository"
	"valora/internal/valuation"
)

// ValuationWriter is the persistence collaborator behind the calculator's
// progressive save. Every write is an upsert keyed by the session token,
// so creates and updates converge on one row per session.
type ValuationWriter struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Flags  *SystemSettingsService
}

func (w *ValuationWriter) CreateInitialValuation(ctx context.Context, token string, fields valuation.IdentityFields) (string, error) {
	if w == nil || w.Repo == nil {
		return token, nil
	}
	now := time.Now().UTC()
	item := &models.CompanyValuation{
		UniqueToken: token,
		ContactName: fields.ContactName,
		Email:       fields.Email,
		CompanyName: fields.CompanyName,
		CurrentStep: 1,
		LastSavedAt: &now,
	}
	if err := w.Repo.UpsertValuationSnapshot(ctx, item); err != nil {
		return "", err
	}
	return token, nil
}

// UpdateValuation is the debounced-tick write. It goes through the
// snapshot upsert, which never assigns result or completion columns: a
// tick landing after SaveValuation must not clear the completed record.
func (w *ValuationWriter) UpdateValuation(ctx context.Context, token string, snap valuation.Snapshot) error {
	if w == nil || w.Repo == nil {
		return nil
	}
	item := valuationFromSnapshot(token, snap)
	now := time.Now().UTC()
	item.LastSavedAt = &now
	return w.Repo.UpsertValuationSnapshot(ctx, item)
}

// SaveValuation is the authoritative completion write. When enabled it
// also promotes the session to a pipeline lead.
func (w *ValuationWriter) SaveValuation(ctx context.Context, token string, in valuation.Input, result valuation.Result) error {
	if w == nil || w.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	years := in.YearsOfOperation
	item := &models.CompanyValuation{
		UniqueToken:            token,
		ContactName:            in.ContactName,
		CompanyName:            in.CompanyName,
		CIF:                    in.CIF,
		Email:                  in.Email,
		Phone:                  in.Phone,
		Industry:               in.Industry,
		EmployeeRange:          in.EmployeeRange,
		Revenue:                decimalPtr(in.Revenue),
		EBITDA:                 decimalPtr(in.EBITDA),
		HasAdjustments:         in.HasAdjustments,
		Location:               in.Location,
		OwnershipParticipation: in.OwnershipParticipation,
		CompetitiveAdvantage:   in.CompetitiveAdvantage,
		FinalValuation:         decimalPtr(result.FinalValuation),
		ValuationLow:           decimalPtr(result.ValuationLow),
		ValuationHigh:          decimalPtr(result.ValuationHigh),
		EBITDAMultipleUsed:     decimalPtr(result.EBITDAMultipleUsed),
		CurrentStep:            int(valuation.Step4Results),
		Completed:              true,
		LastSavedAt:            &now,
	}
	if years > 0 {
		item.YearsOfOperation = &years
	}
	if in.HasAdjustments {
		item.AdjustmentAmount = decimalPtr(in.AdjustmentAmount)
	}
	if err := w.Repo.UpsertValuationByToken(ctx, item); err != nil {
		return err
	}

	if w.Flags != nil && w.Flags.IsEnabled(ctx, FeatureLeadAutoCreate, true) {
		if err := w.promoteLead(ctx, token, in); err != nil && w.Logger != nil {
			w.Logger.Warn("lead promotion failed", zap.String("token", token), zap.Error(err))
		}
	}
	return nil
}

// promoteLead creates the pipeline lead for a completed valuation unless
// the session already produced one. Calculator leads are sell-side.
func (w *ValuationWriter) promoteLead(ctx context.Context, token string, in valuation.Input) error {
	existing, err := w.Repo.GetLeadByValuationToken(ctx, token)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	lead := &models.Lead{
		ContactName:    in.ContactName,
		CompanyName:    in.CompanyName,
		Email:          in.Email,
		Phone:          in.Phone,
		CIF:            in.CIF,
		OperationType:  models.OperationVenta,
		PipelineStatus: pipeline.StatusNueva,
		ValuationToken: &token,
	}
	return w.Repo.InsertLead(ctx, lead)
}

func valuationFromSnapshot(token string, snap valuation.Snapshot) *models.CompanyValuation {
	item := &models.CompanyValuation{
		UniqueToken:            token,
		ContactName:            strings.TrimSpace(snap[valuation.FieldContactName]),
		CompanyName:            strings.TrimSpace(snap[valuation.FieldCompanyName]),
		CIF:                    strings.ToUpper(strings.TrimSpace(snap[valuation.FieldCIF])),
		Email:                  strings.TrimSpace(snap[valuation.FieldEmail]),
		Phone:                  strings.TrimSpace(snap[valuation.FieldPhone]),
		Industry:               strings.TrimSpace(snap[valuation.FieldIndustry]),
		EmployeeRange:          strings.TrimSpace(snap[valuation.FieldEmployeeRange]),
		Location:               strings.TrimSpace(snap[valuation.FieldLocation]),
		OwnershipParticipation: strings.TrimSpace(snap[valuation.FieldOwnership]),
		CompetitiveAdvantage:   strings.TrimSpace(snap[valuation.FieldCompetitiveAdvantage]),
		CurrentStep:            1,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(snap[valuation.FieldYearsOfOperation])); err == nil && n > 0 {
		item.YearsOfOperation = &n
	}
	if v, ok := parseDecimal(snap[valuation.FieldRevenue]); ok {
		item.Revenue = &v
	}
	if v, ok := parseDecimal(snap[valuation.FieldEBITDA]); ok {
		item.EBITDA = &v
	}
	switch strings.ToLower(strings.TrimSpace(snap[valuation.FieldHasAdjustments])) {
	case "true", "1", "yes", "si", "sí":
		item.HasAdjustments = true
		if v, ok := parseDecimal(snap[valuation.FieldAdjustmentAmount]); ok {
			item.AdjustmentAmount = &v
		}
	}
	return item
}

func parseDecimal(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func decimalPtr(v decimal.Decimal) *decimal.Decimal {
	return &v
}
