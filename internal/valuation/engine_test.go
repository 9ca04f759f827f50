package valuation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBasic(t *testing.T) {
	e := &Engine{RangeBand: 0.15}
	in := Input{
		Industry:      "tecnologia",
		EmployeeRange: "6-25",
		Revenue:       dec("500000"),
		EBITDA:        dec("100000"),
	}
	got, err := e.Compute(context.Background(), in, FixedMultiple{Multiple: dec("9")})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !got.FinalValuation.Equal(dec("900000")) {
		t.Fatalf("FinalValuation = %s, want 900000", got.FinalValuation)
	}
	if !got.ValuationLow.Equal(dec("765000")) {
		t.Fatalf("ValuationLow = %s, want 765000", got.ValuationLow)
	}
	if !got.ValuationHigh.Equal(dec("1035000")) {
		t.Fatalf("ValuationHigh = %s, want 1035000", got.ValuationHigh)
	}
	if !got.EBITDAMultipleUsed.Equal(dec("9")) {
		t.Fatalf("EBITDAMultipleUsed = %s, want 9", got.EBITDAMultipleUsed)
	}
}

func TestComputeAdjustments(t *testing.T) {
	e := &Engine{RangeBand: 0.15}
	table := FixedMultiple{Multiple: dec("9")}

	in := Input{EBITDA: dec("100000"), HasAdjustments: true, AdjustmentAmount: dec("25000")}
	got, err := e.Compute(context.Background(), in, table)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !got.FinalValuation.Equal(dec("1125000")) {
		t.Fatalf("FinalValuation = %s, want 1125000", got.FinalValuation)
	}

	// With the flag off the adjustment amount is ignored even if set.
	in.HasAdjustments = false
	got, err = e.Compute(context.Background(), in, table)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !got.FinalValuation.Equal(dec("900000")) {
		t.Fatalf("FinalValuation = %s, want 900000", got.FinalValuation)
	}
}

func TestComputeNegativeClampsToZero(t *testing.T) {
	e := &Engine{}
	in := Input{EBITDA: dec("-50000")}
	got, err := e.Compute(context.Background(), in, FixedMultiple{Multiple: dec("4")})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !got.FinalValuation.IsZero() || !got.ValuationLow.IsZero() || !got.ValuationHigh.IsZero() {
		t.Fatalf("negative EBITDA not clamped: %s [%s, %s]",
			got.FinalValuation, got.ValuationLow, got.ValuationHigh)
	}
}

func TestStaticTableFallback(t *testing.T) {
	table := NewStaticTable(DefaultMultiples(4.0))
	ctx := context.Background()

	// Exact (sector, range) hit: tecnologia base 5.5 + 0.3 for 26-100.
	m, err := table.LookupMultiple(ctx, "tecnologia", "26-100")
	if err != nil {
		t.Fatalf("LookupMultiple: %v", err)
	}
	if !m.Equal(dec("5.8")) {
		t.Fatalf("exact lookup = %s, want 5.8", m)
	}

	// Unknown range falls back to the sector default.
	m, err = table.LookupMultiple(ctx, "hosteleria", "bogus")
	if err != nil {
		t.Fatalf("LookupMultiple: %v", err)
	}
	if !m.Equal(dec("3")) {
		t.Fatalf("sector fallback = %s, want 3", m)
	}

	// Unknown sector falls back to the global default.
	m, err = table.LookupMultiple(ctx, "bogus", "1-5")
	if err != nil {
		t.Fatalf("LookupMultiple: %v", err)
	}
	if !m.Equal(dec("4")) {
		t.Fatalf("global fallback = %s, want 4", m)
	}
}
