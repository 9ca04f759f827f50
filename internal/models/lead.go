package models

import "time"

// OperationType distinguishes sell-side from buy-side leads. It is resolved
// once when the lead enters the system; downstream code switches on it
// instead of probing optional fields.
type OperationType string

const (
	OperationVenta  OperationType = "venta"
	OperationCompra OperationType = "compra"
)

func (t OperationType) Valid() bool {
	return t == OperationVenta || t == OperationCompra
}

// Lead is a prospective client in the deal pipeline.
type Lead struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	ContactName string `gorm:"type:varchar(200);not null"`
	CompanyName string `gorm:"type:varchar(200);not null;index"`
	Email       string `gorm:"type:varchar(200);not null;index"`
	Phone       string `gorm:"type:varchar(30)"`
	CIF         string `gorm:"type:varchar(9);index"`

	OperationType  OperationType `gorm:"type:varchar(10);not null;index"`
	PipelineStatus string        `gorm:"type:varchar(30);not null;default:'nueva';index"`

	// ValuationToken links the lead to the calculator session that created
	// it, when the lead originated from the public calculator.
	ValuationToken *string `gorm:"type:varchar(64);index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Lead) TableName() string {
	return "leads"
}

// LeadStatusChange is an append-only history row behind the pipeline
// history view.
type LeadStatusChange struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	LeadID uint64 `gorm:"not null;index"`

	FromStatus string `gorm:"type:varchar(30);not null"`
	ToStatus   string `gorm:"type:varchar(30);not null"`
	Reason     string `gorm:"type:text"`
	ChangedBy  string `gorm:"type:varchar(120)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (LeadStatusChange) TableName() string {
	return "lead_status_changes"
}
