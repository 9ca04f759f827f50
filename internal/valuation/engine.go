// Package valuation implements the company valuation calculator: the
// deterministic valuation formula, the four-step wizard state machine and
// the debounced progressive-save controller.
package valuation

import (
	"context"

	"github.com/shopspring/decimal"
)

// Input carries one calculator session's answers, already parsed into
// domain types. The engine assumes the wizard's step gating ran first and
// does not re-validate fields.
type Input struct {
	ContactName string
	CompanyName string
	CIF         string
	Email       string
	Phone       string

	Industry         string
	EmployeeRange    string
	YearsOfOperation int

	Revenue          decimal.Decimal
	EBITDA           decimal.Decimal
	HasAdjustments   bool
	AdjustmentAmount decimal.Decimal

	Location               string
	OwnershipParticipation string
	CompetitiveAdvantage   string
}

type Result struct {
	FinalValuation     decimal.Decimal
	ValuationLow       decimal.Decimal
	ValuationHigh      decimal.Decimal
	EBITDAMultipleUsed decimal.Decimal
}

// MultipleTable resolves the EBITDA multiple for a sector and size bucket.
// Implementations fall back from the exact (sector, range) pair to the
// sector default and finally to a global default, so Lookup only fails on
// infrastructure errors.
type MultipleTable interface {
	LookupMultiple(ctx context.Context, sector, employeeRange string) (decimal.Decimal, error)
}

// Engine computes a point valuation and range from financial inputs.
// RangeBand is the width of the valuation range as a fraction of the point
// estimate; 0.15 yields [85%, 115%].
type Engine struct {
	RangeBand float64
}

const DefaultRangeBand = 0.15

// Compute applies the valuation formula:
//
//	adjustedEBITDA = ebitda + (hasAdjustments ? adjustmentAmount : 0)
//	finalValuation = max(0, adjustedEBITDA × multiple)
//
// A non-positive adjusted EBITDA clamps the valuation to zero rather than
// reporting a negative company value.
func (e *Engine) Compute(ctx context.Context, in Input, table MultipleTable) (Result, error) {
	multiple, err := table.LookupMultiple(ctx, in.Industry, in.EmployeeRange)
	if err != nil {
		return Result{}, err
	}

	adjusted := in.EBITDA
	if in.HasAdjustments {
		adjusted = adjusted.Add(in.AdjustmentAmount)
	}

	final := adjusted.Mul(multiple)
	if final.IsNegative() {
		final = decimal.Zero
	}

	band := e.RangeBand
	if band <= 0 {
		band = DefaultRangeBand
	}
	b := decimal.NewFromFloat(band)
	one := decimal.NewFromInt(1)

	return Result{
		FinalValuation:     final,
		ValuationLow:       final.Mul(one.Sub(b)),
		ValuationHigh:      final.Mul(one.Add(b)),
		EBITDAMultipleUsed: multiple,
	}, nil
}
