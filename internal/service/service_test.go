package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"valora/internal/cache"
	"valora/internal/models"
	"valora/internal/repository"
	"valora/internal/valuation"
)

// stubRepo overrides the handful of Repository methods each test needs;
// anything else panics via the embedded nil interface.
type stubRepo struct {
	repository.Repository

	leads      map[uint64]*models.Lead
	docs       map[uint64][]models.Fase0Document
	rules      []models.WorkflowRule
	multiples  []models.SectorMultiple
	valuations map[string]*models.CompanyValuation

	statusChanges []models.LeadStatusChange
	inserted      []models.Fase0Document
}

func (r *stubRepo) GetLeadByID(ctx context.Context, id uint64) (*models.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return nil, nil
	}
	copied := *lead
	return &copied, nil
}

func (r *stubRepo) DocumentsByLead(ctx context.Context, leadID uint64) ([]models.Fase0Document, error) {
	return r.docs[leadID], nil
}

func (r *stubRepo) ActiveWorkflowRules(ctx context.Context) ([]models.WorkflowRule, error) {
	var active []models.WorkflowRule
	for _, rule := range r.rules {
		if rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (r *stubRepo) CountWorkflowRules(ctx context.Context) (int64, error) {
	return int64(len(r.rules)), nil
}

func (r *stubRepo) UpsertWorkflowRule(ctx context.Context, item *models.WorkflowRule) error {
	r.rules = append(r.rules, *item)
	return nil
}

func (r *stubRepo) UpdateLeadStatus(ctx context.Context, id uint64, status string) error {
	if lead, ok := r.leads[id]; ok {
		lead.PipelineStatus = status
	}
	return nil
}

func (r *stubRepo) InsertLeadStatusChange(ctx context.Context, item *models.LeadStatusChange) error {
	r.statusChanges = append(r.statusChanges, *item)
	return nil
}

func (r *stubRepo) InsertFase0Document(ctx context.Context, item *models.Fase0Document) error {
	item.ID = uint64(len(r.inserted) + 1)
	r.inserted = append(r.inserted, *item)
	r.docs[item.LeadID] = append(r.docs[item.LeadID], *item)
	return nil
}

func (r *stubRepo) UpsertValuationByToken(ctx context.Context, item *models.CompanyValuation) error {
	copied := *item
	r.valuations[item.UniqueToken] = &copied
	return nil
}

// UpsertValuationSnapshot mirrors the store's on-conflict column list:
// form fields only, results and completion flags untouched.
func (r *stubRepo) UpsertValuationSnapshot(ctx context.Context, item *models.CompanyValuation) error {
	existing, ok := r.valuations[item.UniqueToken]
	if !ok {
		copied := *item
		r.valuations[item.UniqueToken] = &copied
		return nil
	}
	existing.ContactName = item.ContactName
	existing.CompanyName = item.CompanyName
	existing.CIF = item.CIF
	existing.Email = item.Email
	existing.Phone = item.Phone
	existing.Industry = item.Industry
	existing.EmployeeRange = item.EmployeeRange
	existing.YearsOfOperation = item.YearsOfOperation
	existing.Revenue = item.Revenue
	existing.EBITDA = item.EBITDA
	existing.HasAdjustments = item.HasAdjustments
	existing.AdjustmentAmount = item.AdjustmentAmount
	existing.Location = item.Location
	existing.OwnershipParticipation = item.OwnershipParticipation
	existing.CompetitiveAdvantage = item.CompetitiveAdvantage
	existing.LastSavedAt = item.LastSavedAt
	return nil
}

func (r *stubRepo) GetSectorMultiple(ctx context.Context, sector, employeeRange string) (*models.SectorMultiple, error) {
	for i := range r.multiples {
		m := r.multiples[i]
		if m.Sector == sector && m.EmployeeRange == employeeRange {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListSectorMultiples(ctx context.Context) ([]models.SectorMultiple, error) {
	return r.multiples, nil
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		leads:      map[uint64]*models.Lead{},
		docs:       map[uint64][]models.Fase0Document{},
		valuations: map[string]*models.CompanyValuation{},
	}
}

func sellLead(id uint64, status string) *models.Lead {
	return &models.Lead{
		ID:             id,
		ContactName:    "Ana García",
		CompanyName:    "Acme SL",
		Email:          "ana@x.com",
		OperationType:  models.OperationVenta,
		PipelineStatus: status,
	}
}

func TestLeadServiceBlockedMove(t *testing.T) {
	repo := newStubRepo()
	repo.leads[1] = sellLead(1, "fase0")
	rules := &WorkflowRulesService{Repo: repo}
	if err := rules.EnsureDefaultRules(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultRules: %v", err)
	}
	svc := &LeadService{Repo: repo, Rules: rules}

	_, err := svc.ChangeStatus(context.Background(), 1, "activa", "", "ops")
	refused, ok := err.(*MoveRefusedError)
	if !ok {
		t.Fatalf("expected MoveRefusedError, got %v", err)
	}
	if refused.Reason == "" {
		t.Fatalf("refusal carried no reason")
	}
	if repo.leads[1].PipelineStatus != "fase0" {
		t.Fatalf("refused move changed the status")
	}
	if len(repo.statusChanges) != 0 {
		t.Fatalf("refused move wrote history")
	}
}

func TestLeadServiceAllowedMoveWritesHistory(t *testing.T) {
	repo := newStubRepo()
	repo.leads[1] = sellLead(1, "fase0")
	repo.docs[1] = []models.Fase0Document{
		{DocumentType: models.DocumentNDA, Status: models.StatusSigned},
	}
	rules := &WorkflowRulesService{Repo: repo}
	if err := rules.EnsureDefaultRules(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultRules: %v", err)
	}
	svc := &LeadService{Repo: repo, Rules: rules}

	lead, err := svc.ChangeStatus(context.Background(), 1, "activa", "nda firmado", "ops")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if lead.PipelineStatus != "activa" {
		t.Fatalf("status = %s, want activa", lead.PipelineStatus)
	}
	if len(repo.statusChanges) != 1 {
		t.Fatalf("history rows = %d, want 1", len(repo.statusChanges))
	}
	change := repo.statusChanges[0]
	if change.FromStatus != "fase0" || change.ToStatus != "activa" || change.ChangedBy != "ops" {
		t.Fatalf("history row wrong: %+v", change)
	}
}

func TestLeadServiceIllegalBoardMove(t *testing.T) {
	repo := newStubRepo()
	repo.leads[1] = sellLead(1, "nueva")
	svc := &LeadService{Repo: repo}

	if _, err := svc.ChangeStatus(context.Background(), 1, "ganada", "", ""); err == nil {
		t.Fatalf("nueva -> ganada accepted")
	}
	if _, err := svc.ChangeStatus(context.Background(), 1, "bogus", "", ""); err != ErrUnknownStatus {
		t.Fatalf("unknown status error = %v", err)
	}
}

func TestFase0DocumentServiceGatesMandates(t *testing.T) {
	repo := newStubRepo()
	repo.leads[1] = sellLead(1, "fase0")
	svc := &Fase0DocumentService{Repo: repo, Validity: 30 * 24 * time.Hour}
	ctx := context.Background()

	// Mandate before the NDA is signed is refused.
	_, err := svc.CreateDocument(ctx, 1, models.DocumentMandatoVenta, nil)
	if _, ok := err.(*GenerationRefusedError); !ok {
		t.Fatalf("expected GenerationRefusedError, got %v", err)
	}

	// An empty type falls back to the suggestion: the NDA.
	doc, err := svc.CreateDocument(ctx, 1, "", nil)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if doc.DocumentType != models.DocumentNDA || doc.Status != models.StatusDraft {
		t.Fatalf("created %s/%s, want nda/draft", doc.DocumentType, doc.Status)
	}
	if doc.ExpiresAt == nil {
		t.Fatalf("expiry not stamped")
	}

	// Sign the NDA; the sale mandate is now allowed, the purchase one
	// never is for a sell-side lead.
	repo.docs[1] = []models.Fase0Document{
		{DocumentType: models.DocumentNDA, Status: models.StatusSigned},
	}
	if _, err := svc.CreateDocument(ctx, 1, models.DocumentMandatoVenta, nil); err != nil {
		t.Fatalf("sale mandate refused: %v", err)
	}
	if _, err := svc.CreateDocument(ctx, 1, models.DocumentMandatoCompra, nil); err == nil {
		t.Fatalf("purchase mandate accepted for sell-side lead")
	}
}

func TestSectorMultiplesFallbackChain(t *testing.T) {
	repo := newStubRepo()
	repo.multiples = []models.SectorMultiple{
		{Sector: "tecnologia", EmployeeRange: "6-25", Multiple: decimal.NewFromFloat(5.5)},
		{Sector: "tecnologia", EmployeeRange: "", Multiple: decimal.NewFromFloat(5.0)},
		{Sector: "*", EmployeeRange: "", Multiple: decimal.NewFromFloat(4.0)},
	}
	svc := &SectorMultiplesService{Repo: repo, Cache: cache.NewMemoryStore(), GlobalMultiple: 4.0}
	ctx := context.Background()

	m, err := svc.LookupMultiple(ctx, "tecnologia", "6-25")
	if err != nil {
		t.Fatalf("LookupMultiple: %v", err)
	}
	if !m.Equal(decimal.NewFromFloat(5.5)) {
		t.Fatalf("exact = %s, want 5.5", m)
	}

	m, _ = svc.LookupMultiple(ctx, "tecnologia", "250+")
	if !m.Equal(decimal.NewFromFloat(5.0)) {
		t.Fatalf("sector default = %s, want 5", m)
	}

	m, _ = svc.LookupMultiple(ctx, "desconocido", "1-5")
	if !m.Equal(decimal.NewFromFloat(4.0)) {
		t.Fatalf("global default = %s, want 4", m)
	}

	// Second exact lookup is served from cache; changing the table does
	// not change the answer until invalidated.
	repo.multiples[0].Multiple = decimal.NewFromFloat(9)
	m, _ = svc.LookupMultiple(ctx, "tecnologia", "6-25")
	if !m.Equal(decimal.NewFromFloat(5.5)) {
		t.Fatalf("cached = %s, want 5.5", m)
	}
	svc.Invalidate(ctx, "tecnologia", "6-25")
	m, _ = svc.LookupMultiple(ctx, "tecnologia", "6-25")
	if !m.Equal(decimal.NewFromFloat(9)) {
		t.Fatalf("post-invalidate = %s, want 9", m)
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	m := &SessionManager{
		Engine:   &valuation.Engine{},
		Table:    valuation.FixedMultiple{Multiple: decimal.NewFromFloat(4)},
		TTL:      time.Hour,
		MaxOpen:  2,
		Debounce: time.Hour,
	}

	first, err := m.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, ok := m.Get(first.Saver.Token()); !ok {
		t.Fatalf("session not resolvable by token")
	}

	if _, err := m.NewSession(); err != nil {
		t.Fatalf("second session: %v", err)
	}
	if _, err := m.NewSession(); err != ErrTooManySessions {
		t.Fatalf("cap not enforced: %v", err)
	}

	// Reset re-keys the session under a fresh token.
	old := first.Saver.Token()
	sess, ok := m.Reset(old)
	if !ok {
		t.Fatalf("Reset failed")
	}
	if sess.Saver.Token() == old {
		t.Fatalf("token unchanged after reset")
	}
	if _, ok := m.Get(old); ok {
		t.Fatalf("old token still resolves")
	}
	if _, ok := m.Get(sess.Saver.Token()); !ok {
		t.Fatalf("new token does not resolve")
	}
}

func TestSessionManagerReapsIdle(t *testing.T) {
	m := &SessionManager{
		Engine:   &valuation.Engine{},
		Table:    valuation.FixedMultiple{Multiple: decimal.NewFromFloat(4)},
		TTL:      10 * time.Millisecond,
		Debounce: time.Hour,
	}
	if _, err := m.NewSession(); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if n := m.RunOnce(context.Background()); n != 1 {
		t.Fatalf("reaped %d, want 1", n)
	}
	if m.Len() != 0 {
		t.Fatalf("sessions left after reap: %d", m.Len())
	}
}

func TestValuationWriterTickAfterCompletionKeepsResults(t *testing.T) {
	repo := newStubRepo()
	w := &ValuationWriter{Repo: repo}
	ctx := context.Background()
	token := "tok-1"

	snap := valuation.Snapshot{
		valuation.FieldContactName: "Ana García",
		valuation.FieldCompanyName: "Acme SL",
		valuation.FieldEmail:       "ana@x.com",
		valuation.FieldEBITDA:      "100000",
	}
	if err := w.UpdateValuation(ctx, token, snap); err != nil {
		t.Fatalf("UpdateValuation: %v", err)
	}

	in := valuation.Input{
		ContactName:   "Ana García",
		CompanyName:   "Acme SL",
		Email:         "ana@x.com",
		Industry:      "tecnologia",
		EmployeeRange: "6-25",
		EBITDA:        decimal.NewFromInt(100000),
	}
	result := valuation.Result{
		FinalValuation:     decimal.NewFromInt(550000),
		ValuationLow:       decimal.NewFromInt(467500),
		ValuationHigh:      decimal.NewFromInt(632500),
		EBITDAMultipleUsed: decimal.NewFromFloat(5.5),
	}
	if err := w.SaveValuation(ctx, token, in, result); err != nil {
		t.Fatalf("SaveValuation: %v", err)
	}

	// A debounced tick landing after the completion save rewrites form
	// fields only.
	snap[valuation.FieldContactName] = "Ana García Pérez"
	if err := w.UpdateValuation(ctx, token, snap); err != nil {
		t.Fatalf("UpdateValuation after completion: %v", err)
	}

	row := repo.valuations[token]
	if row == nil {
		t.Fatal("valuation row missing")
	}
	if !row.Completed {
		t.Fatal("completion flag cleared by post-completion tick")
	}
	if row.FinalValuation == nil || !row.FinalValuation.Equal(result.FinalValuation) {
		t.Fatalf("final valuation lost: %v", row.FinalValuation)
	}
	if row.ValuationLow == nil || row.ValuationHigh == nil || row.EBITDAMultipleUsed == nil {
		t.Fatal("valuation range or multiple lost")
	}
	if row.CurrentStep != int(valuation.Step4Results) {
		t.Fatalf("current step reset to %d", row.CurrentStep)
	}
	if row.ContactName != "Ana García Pérez" {
		t.Fatalf("form edit not applied: %q", row.ContactName)
	}
}
