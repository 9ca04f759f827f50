package models

import "time"

const (
	RuleBlocking    = "blocking"
	RuleAutoSuggest = "auto_suggest"
)

// WorkflowRule is static configuration read by the Fase 0 workflow engine.
// Blocking rules gate pipeline status advancement on a signed document;
// auto-suggest rules pick the next document to generate for a lead's
// operation type.
type WorkflowRule struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	RuleType string `gorm:"type:varchar(20);not null;index"`

	// Blocking rules.
	TargetStatus     string       `gorm:"type:varchar(30);index"`
	RequiredDocument DocumentType `gorm:"type:varchar(20)"`
	Reason           string       `gorm:"type:text"`

	// Auto-suggest rules.
	OperationType     OperationType `gorm:"type:varchar(10)"`
	SuggestedDocument DocumentType  `gorm:"type:varchar(20)"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (WorkflowRule) TableName() string {
	return "workflow_rules"
}
