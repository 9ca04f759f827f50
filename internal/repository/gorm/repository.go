package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"valora/internal/models"
	"valora/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Leads ------------------------------------------------------------------

func (s *Store) InsertLead(ctx context.Context, item *models.Lead) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLeadByID(ctx context.Context, id uint64) (*models.Lead, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Lead
	err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetLeadByValuationToken(ctx context.Context, token string) (*models.Lead, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var item models.Lead
	err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("valuation_token = ?", token).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func applyLeadFilters(query *gorm.DB, params repository.ListLeadsParams) *gorm.DB {
	if params.PipelineStatus != nil && strings.TrimSpace(*params.PipelineStatus) != "" {
		query = query.Where("pipeline_status = ?", strings.TrimSpace(*params.PipelineStatus))
	}
	if params.OperationType != nil && strings.TrimSpace(*params.OperationType) != "" {
		query = query.Where("operation_type = ?", strings.TrimSpace(*params.OperationType))
	}
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		needle := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where(
			"contact_name ILIKE ? OR company_name ILIKE ? OR email ILIKE ?",
			needle, needle, needle,
		)
	}
	return query
}

func (s *Store) ListLeads(ctx context.Context, params repository.ListLeadsParams) ([]models.Lead, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyLeadFilters(s.db.WithContext(ctx).Model(&models.Lead{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Lead
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountLeads(ctx context.Context, params repository.ListLeadsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyLeadFilters(s.db.WithContext(ctx).Model(&models.Lead{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateLeadStatus(ctx context.Context, id uint64, status string) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"pipeline_status": status,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (s *Store) InsertLeadStatusChange(ctx context.Context, item *models.LeadStatusChange) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListLeadStatusChanges(ctx context.Context, leadID uint64, limit int) ([]models.LeadStatusChange, error) {
	if s == nil || s.db == nil || leadID == 0 {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var items []models.LeadStatusChange
	if err := s.db.WithContext(ctx).
		Model(&models.LeadStatusChange{}).
		Where("lead_id = ?", leadID).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountLeadsByStatus(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	type row struct {
		PipelineStatus string
		Total          int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("pipeline_status, COUNT(*) AS total").
		Group("pipeline_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.PipelineStatus] = r.Total
	}
	return out, nil
}

// --- Company valuations -----------------------------------------------------

// UpsertValuationByToken is the full-row write behind the completion
// save: it targets the unique_token row and assigns every column,
// results and completion flags included.
func (s *Store) UpsertValuationByToken(ctx context.Context, item *models.CompanyValuation) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.UniqueToken) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "unique_token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"contact_name",
			"company_name",
			"cif",
			"email",
			"phone",
			"industry",
			"employee_range",
			"years_of_operation",
			"revenue",
			"ebitda",
			"has_adjustments",
			"adjustment_amount",
			"location",
			"ownership_participation",
			"competitive_advantage",
			"final_valuation",
			"valuation_low",
			"valuation_high",
			"ebitda_multiple_used",
			"current_step",
			"completed",
			"abandoned",
			"last_saved_at",
			"updated_at",
		}),
	}).Create(item).Error
}

// UpsertValuationSnapshot is the idempotent write behind the progressive
// save: repeated creates and updates for a session converge on the
// unique_token row, and only form fields are assigned on conflict. The
// result, current_step, completed and abandoned columns are never
// touched, so a debounced tick landing after the completion save cannot
// clear the saved record.
func (s *Store) UpsertValuationSnapshot(ctx context.Context, item *models.CompanyValuation) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.UniqueToken) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "unique_token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"contact_name",
			"company_name",
			"cif",
			"email",
			"phone",
			"industry",
			"employee_range",
			"years_of_operation",
			"revenue",
			"ebitda",
			"has_adjustments",
			"adjustment_amount",
			"location",
			"ownership_participation",
			"competitive_advantage",
			"last_saved_at",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetValuationByToken(ctx context.Context, token string) (*models.CompanyValuation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var item models.CompanyValuation
	err := s.db.WithContext(ctx).Model(&models.CompanyValuation{}).Where("unique_token = ?", token).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func applyValuationFilters(query *gorm.DB, params repository.ListValuationsParams) *gorm.DB {
	if params.Completed != nil {
		query = query.Where("completed = ?", *params.Completed)
	}
	if params.Abandoned != nil {
		query = query.Where("abandoned = ?", *params.Abandoned)
	}
	if params.Industry != nil && strings.TrimSpace(*params.Industry) != "" {
		query = query.Where("industry = ?", strings.TrimSpace(*params.Industry))
	}
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		needle := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where(
			"contact_name ILIKE ? OR company_name ILIKE ? OR email ILIKE ?",
			needle, needle, needle,
		)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) ListValuations(ctx context.Context, params repository.ListValuationsParams) ([]models.CompanyValuation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyValuationFilters(s.db.WithContext(ctx).Model(&models.CompanyValuation{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.CompanyValuation
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountValuations(ctx context.Context, params repository.ListValuationsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyValuationFilters(s.db.WithContext(ctx).Model(&models.CompanyValuation{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkStaleValuationsAbandoned(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.CompanyValuation{}).
		Where("completed = ?", false).
		Where("abandoned = ?", false).
		Where("updated_at < ?", before).
		Updates(map[string]any{
			"abandoned":  true,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (s *Store) ValuationsOverview(ctx context.Context) (repository.ValuationsOverview, error) {
	out := repository.ValuationsOverview{ByIndustry: map[string]int64{}}
	if s == nil || s.db == nil {
		return out, nil
	}
	type agg struct {
		Total          int64
		Completed      int64
		Abandoned      int64
		AvgValuation   float64
		TotalValuation float64
	}
	var a agg
	if err := s.db.WithContext(ctx).
		Model(&models.CompanyValuation{}).
		Select(`
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE completed) AS completed,
			COUNT(*) FILTER (WHERE abandoned) AS abandoned,
			COALESCE(AVG(final_valuation) FILTER (WHERE completed), 0) AS avg_valuation,
			COALESCE(SUM(final_valuation) FILTER (WHERE completed), 0) AS total_valuation
		`).
		Scan(&a).Error; err != nil {
		return out, err
	}
	out.Total = a.Total
	out.Completed = a.Completed
	out.Abandoned = a.Abandoned
	out.AvgValuation = a.AvgValuation
	out.TotalValuation = a.TotalValuation

	type row struct {
		Industry string
		Total    int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&models.CompanyValuation{}).
		Select("industry, COUNT(*) AS total").
		Where("industry <> ''").
		Group("industry").
		Scan(&rows).Error; err != nil {
		return out, err
	}
	for _, r := range rows {
		out.ByIndustry[r.Industry] = r.Total
	}
	return out, nil
}

// --- Sector multiples -------------------------------------------------------

func (s *Store) UpsertSectorMultiple(ctx context.Context, item *models.SectorMultiple) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Sector) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sector"}, {Name: "employee_range"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"multiple",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSectorMultiple(ctx context.Context, sector, employeeRange string) (*models.SectorMultiple, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SectorMultiple
	err := s.db.WithContext(ctx).
		Model(&models.SectorMultiple{}).
		Where("sector = ?", strings.TrimSpace(sector)).
		Where("employee_range = ?", strings.TrimSpace(employeeRange)).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSectorMultiples(ctx context.Context) ([]models.SectorMultiple, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SectorMultiple
	if err := s.db.WithContext(ctx).
		Model(&models.SectorMultiple{}).
		Order("sector asc, employee_range asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteSectorMultiple(ctx context.Context, sector, employeeRange string) error {
	if s == nil || s.db == nil {
		return nil
	}
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("sector = ?", sector).
		Where("employee_range = ?", strings.TrimSpace(employeeRange)).
		Delete(&models.SectorMultiple{}).Error
}

// --- Fase 0 documents -------------------------------------------------------

func (s *Store) InsertFase0Document(ctx context.Context, item *models.Fase0Document) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetFase0DocumentByID(ctx context.Context, id uint64) (*models.Fase0Document, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Fase0Document
	err := s.db.WithContext(ctx).Model(&models.Fase0Document{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DocumentsByLead(ctx context.Context, leadID uint64) ([]models.Fase0Document, error) {
	if s == nil || s.db == nil || leadID == 0 {
		return nil, nil
	}
	var items []models.Fase0Document
	if err := s.db.WithContext(ctx).
		Model(&models.Fase0Document{}).
		Where("lead_id = ?", leadID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func applyDocumentFilters(query *gorm.DB, params repository.ListDocumentsParams) *gorm.DB {
	if params.LeadID != nil && *params.LeadID > 0 {
		query = query.Where("lead_id = ?", *params.LeadID)
	}
	if params.DocumentType != nil && strings.TrimSpace(*params.DocumentType) != "" {
		query = query.Where("document_type = ?", strings.TrimSpace(*params.DocumentType))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) ListFase0Documents(ctx context.Context, params repository.ListDocumentsParams) ([]models.Fase0Document, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyDocumentFilters(s.db.WithContext(ctx).Model(&models.Fase0Document{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Fase0Document
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountFase0Documents(ctx context.Context, params repository.ListDocumentsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyDocumentFilters(s.db.WithContext(ctx).Model(&models.Fase0Document{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateFase0DocumentStatus(ctx context.Context, id uint64, status models.DocumentStatus, updates map[string]any) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = status
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.Fase0Document{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ExpireDueDocuments flips draft, sent and viewed documents past their
// expiry to expired. Signed documents are already terminal.
func (s *Store) ExpireDueDocuments(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).
		Model(&models.Fase0Document{}).
		Where("status IN ?", []models.DocumentStatus{models.StatusDraft, models.StatusSent, models.StatusViewed}).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", now).
		Updates(map[string]any{
			"status":     models.StatusExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// --- Workflow rules ---------------------------------------------------------

func (s *Store) UpsertWorkflowRule(ctx context.Context, item *models.WorkflowRule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == 0 {
		return s.db.WithContext(ctx).Create(item).Error
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetWorkflowRuleByID(ctx context.Context, id uint64) (*models.WorkflowRule, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.WorkflowRule
	err := s.db.WithContext(ctx).Model(&models.WorkflowRule{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ActiveWorkflowRules(ctx context.Context) ([]models.WorkflowRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.WorkflowRule
	if err := s.db.WithContext(ctx).
		Model(&models.WorkflowRule{}).
		Where("active = ?", true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListWorkflowRules(ctx context.Context, includeInactive bool) ([]models.WorkflowRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.WorkflowRule{})
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	var items []models.WorkflowRule
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SetWorkflowRuleActive(ctx context.Context, id uint64, active bool) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.WorkflowRule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     active,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (s *Store) CountWorkflowRules(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.WorkflowRule{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- System settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		query = query.Where("key LIKE ?", strings.TrimSpace(*params.Prefix)+"%")
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.SystemSetting
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		query = query.Where("key LIKE ?", strings.TrimSpace(*params.Prefix)+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
