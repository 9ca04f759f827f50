package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyValuation is one calculator session, progressively filled by
// autosave ticks and finalized when the wizard reaches the results step.
// UniqueToken is the idempotency key: every save of a session targets the
// same row, so at most one record exists per session.
type CompanyValuation struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UniqueToken string `gorm:"type:varchar(64);not null;uniqueIndex"`

	ContactName string `gorm:"type:varchar(200)"`
	CompanyName string `gorm:"type:varchar(200);index"`
	CIF         string `gorm:"type:varchar(9)"`
	Email       string `gorm:"type:varchar(200);index"`
	Phone       string `gorm:"type:varchar(30)"`

	Industry         string `gorm:"type:varchar(50);index"`
	EmployeeRange    string `gorm:"type:varchar(20)"`
	YearsOfOperation *int

	Revenue          *decimal.Decimal `gorm:"type:numeric(30,2)"`
	EBITDA           *decimal.Decimal `gorm:"type:numeric(30,2)"`
	HasAdjustments   bool             `gorm:"not null;default:false"`
	AdjustmentAmount *decimal.Decimal `gorm:"type:numeric(30,2)"`

	Location               string `gorm:"type:text"`
	OwnershipParticipation string `gorm:"type:varchar(10)"`
	CompetitiveAdvantage   string `gorm:"type:text"`

	FinalValuation     *decimal.Decimal `gorm:"type:numeric(30,2)"`
	ValuationLow       *decimal.Decimal `gorm:"type:numeric(30,2)"`
	ValuationHigh      *decimal.Decimal `gorm:"type:numeric(30,2)"`
	EBITDAMultipleUsed *decimal.Decimal `gorm:"type:numeric(10,4)"`

	CurrentStep int        `gorm:"not null;default:1"`
	Completed   bool       `gorm:"not null;default:false;index"`
	Abandoned   bool       `gorm:"not null;default:false;index"`
	LastSavedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (CompanyValuation) TableName() string {
	return "company_valuations"
}

// SectorMultiple maps (sector, employee range) to the EBITDA multiple
// applied by the valuation engine. A row with an empty EmployeeRange is the
// sector default; the row with Sector "*" is the global fallback.
type SectorMultiple struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Sector        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sector_range"`
	EmployeeRange string          `gorm:"type:varchar(20);not null;default:'';uniqueIndex:idx_sector_range"`
	Multiple      decimal.Decimal `gorm:"type:numeric(10,4);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SectorMultiple) TableName() string {
	return "sector_multiples"
}
