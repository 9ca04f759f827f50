package valuation

import (
	"context"

	"github.com/shopspring/decimal"
)

// Known sector and size-bucket values. The calculator only offers these,
// so anything else falls through to the default multiples.
var (
	Sectors = []string{
		"tecnologia",
		"industrial",
		"servicios",
		"comercio",
		"hosteleria",
		"salud",
		"construccion",
		"alimentacion",
		"transporte",
		"otros",
	}

	EmployeeRanges = []string{"1-5", "6-25", "26-100", "101-250", "250+"}
)

func KnownSector(s string) bool {
	for _, v := range Sectors {
		if v == s {
			return true
		}
	}
	return false
}

func KnownEmployeeRange(s string) bool {
	for _, v := range EmployeeRanges {
		if v == s {
			return true
		}
	}
	return false
}

// GlobalSector is the wildcard row holding the global default multiple.
const GlobalSector = "*"

// MultipleRow is one (sector, employee range) entry. An empty
// EmployeeRange marks the sector default.
type MultipleRow struct {
	Sector        string
	EmployeeRange string
	Multiple      decimal.Decimal
}

var sectorBaseMultiples = map[string]float64{
	"tecnologia":   5.5,
	"salud":        5.0,
	"alimentacion": 4.5,
	"industrial":   4.2,
	"servicios":    4.0,
	"transporte":   3.8,
	"construccion": 3.5,
	"comercio":     3.2,
	"hosteleria":   3.0,
	"otros":        4.0,
}

var sizeAdjustments = map[string]float64{
	"1-5":     -0.5,
	"6-25":    0,
	"26-100":  0.3,
	"101-250": 0.6,
	"250+":    1.0,
}

// DefaultMultiples expands the base sector multiples into the full
// (sector, range) grid plus sector defaults and the global fallback. Used
// to seed the sector_multiples table and by the static table in tests.
func DefaultMultiples(globalMultiple float64) []MultipleRow {
	if globalMultiple <= 0 {
		globalMultiple = 4.0
	}
	rows := []MultipleRow{{Sector: GlobalSector, Multiple: decimal.NewFromFloat(globalMultiple)}}
	for _, sector := range Sectors {
		base := sectorBaseMultiples[sector]
		rows = append(rows, MultipleRow{Sector: sector, Multiple: decimal.NewFromFloat(base)})
		for _, rng := range EmployeeRanges {
			rows = append(rows, MultipleRow{
				Sector:        sector,
				EmployeeRange: rng,
				Multiple:      decimal.NewFromFloat(base + sizeAdjustments[rng]),
			})
		}
	}
	return rows
}

// StaticTable is an in-memory MultipleTable with the standard fallback
// order: exact (sector, range), then sector default, then global default.
type StaticTable struct {
	rows map[string]decimal.Decimal
}

func NewStaticTable(rows []MultipleRow) *StaticTable {
	t := &StaticTable{rows: make(map[string]decimal.Decimal, len(rows))}
	for _, r := range rows {
		t.rows[r.Sector+"|"+r.EmployeeRange] = r.Multiple
	}
	return t
}

func (t *StaticTable) LookupMultiple(ctx context.Context, sector, employeeRange string) (decimal.Decimal, error) {
	if m, ok := t.rows[sector+"|"+employeeRange]; ok {
		return m, nil
	}
	if m, ok := t.rows[sector+"|"]; ok {
		return m, nil
	}
	if m, ok := t.rows[GlobalSector+"|"]; ok {
		return m, nil
	}
	return decimal.NewFromFloat(4.0), nil
}

// FixedMultiple is a MultipleTable that always returns the same multiple.
type FixedMultiple struct {
	Multiple decimal.Decimal
}

func (f FixedMultiple) LookupMultiple(ctx context.Context, sector, employeeRange string) (decimal.Decimal, error) {
	return f.Multiple, nil
}
