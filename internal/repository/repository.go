package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"valora/internal/models"
)

// Repository is the persistence surface behind the HTTP handlers, the
// workflow engine and the background sweeps.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Leads & pipeline
	InsertLead(ctx context.Context, item *models.Lead) error
	GetLeadByID(ctx context.Context, id uint64) (*models.Lead, error)
	GetLeadByValuationToken(ctx context.Context, token string) (*models.Lead, error)
	ListLeads(ctx context.Context, params ListLeadsParams) ([]models.Lead, error)
	CountLeads(ctx context.Context, params ListLeadsParams) (int64, error)
	UpdateLeadStatus(ctx context.Context, id uint64, status string) error
	InsertLeadStatusChange(ctx context.Context, item *models.LeadStatusChange) error
	ListLeadStatusChanges(ctx context.Context, leadID uint64, limit int) ([]models.LeadStatusChange, error)
	CountLeadsByStatus(ctx context.Context) (map[string]int64, error)

	// Company valuations
	UpsertValuationByToken(ctx context.Context, item *models.CompanyValuation) error
	UpsertValuationSnapshot(ctx context.Context, item *models.CompanyValuation) error
	GetValuationByToken(ctx context.Context, token string) (*models.CompanyValuation, error)
	ListValuations(ctx context.Context, params ListValuationsParams) ([]models.CompanyValuation, error)
	CountValuations(ctx context.Context, params ListValuationsParams) (int64, error)
	MarkStaleValuationsAbandoned(ctx context.Context, before time.Time) (int64, error)
	ValuationsOverview(ctx context.Context) (ValuationsOverview, error)

	// Sector multiples
	UpsertSectorMultiple(ctx context.Context, item *models.SectorMultiple) error
	GetSectorMultiple(ctx context.Context, sector, employeeRange string) (*models.SectorMultiple, error)
	ListSectorMultiples(ctx context.Context) ([]models.SectorMultiple, error)
	DeleteSectorMultiple(ctx context.Context, sector, employeeRange string) error

	// Fase 0 documents
	InsertFase0Document(ctx context.Context, item *models.Fase0Document) error
	GetFase0DocumentByID(ctx context.Context, id uint64) (*models.Fase0Document, error)
	DocumentsByLead(ctx context.Context, leadID uint64) ([]models.Fase0Document, error)
	ListFase0Documents(ctx context.Context, params ListDocumentsParams) ([]models.Fase0Document, error)
	CountFase0Documents(ctx context.Context, params ListDocumentsParams) (int64, error)
	UpdateFase0DocumentStatus(ctx context.Context, id uint64, status models.DocumentStatus, updates map[string]any) error
	ExpireDueDocuments(ctx context.Context, now time.Time) (int64, error)

	// Workflow rules
	UpsertWorkflowRule(ctx context.Context, item *models.WorkflowRule) error
	GetWorkflowRuleByID(ctx context.Context, id uint64) (*models.WorkflowRule, error)
	ActiveWorkflowRules(ctx context.Context) ([]models.WorkflowRule, error)
	ListWorkflowRules(ctx context.Context, includeInactive bool) ([]models.WorkflowRule, error)
	SetWorkflowRuleActive(ctx context.Context, id uint64, active bool) error
	CountWorkflowRules(ctx context.Context) (int64, error)

	// System settings
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

type ListLeadsParams struct {
	Limit          int
	Offset         int
	PipelineStatus *string
	OperationType  *string
	Search         *string
	OrderBy        string
	Asc            *bool
}

type ListValuationsParams struct {
	Limit     int
	Offset    int
	Completed *bool
	Abandoned *bool
	Industry  *string
	Search    *string
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}

type ListDocumentsParams struct {
	Limit        int
	Offset       int
	LeadID       *uint64
	DocumentType *string
	Status       *string
	OrderBy      string
	Asc          *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}

// ValuationsOverview feeds the analytics dashboard counts.
type ValuationsOverview struct {
	Total          int64
	Completed      int64
	Abandoned      int64
	AvgValuation   float64
	TotalValuation float64
	ByIndustry     map[string]int64
}
