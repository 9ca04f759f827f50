// Package fase0 implements the pre-engagement document workflow: the
// document lifecycle table, the per-lead phase status and progress rules,
// and the pipeline blocking checks driven by configured workflow rules.
package fase0

import (
	"context"

	"valora/internal/models"
)

// PhaseStatus is the aggregate Fase 0 state of a lead.
type PhaseStatus string

const (
	PhasePending  PhaseStatus = "pending"
	PhaseActive   PhaseStatus = "active"
	PhaseBlocked  PhaseStatus = "blocked"
	PhaseComplete PhaseStatus = "complete"
)

// RequirementState is the per-document-type progress marker. The mandate
// type that does not apply to the lead's operation type is "na", never
// "pending".
type RequirementState string

const (
	RequirementPending       RequirementState = "pending"
	RequirementGenerated     RequirementState = "generated"
	RequirementSigned        RequirementState = "signed"
	RequirementNotApplicable RequirementState = "na"
)

// State is one lead's Fase 0 situation, computed from its full document
// set. It is a pure value; fetch the documents, build it, ask questions.
type State struct {
	operation models.OperationType
	docs      []models.Fase0Document
}

func NewState(operation models.OperationType, docs []models.Fase0Document) *State {
	return &State{operation: operation, docs: docs}
}

// MandateFor returns the mandate type that applies to an operation type.
// Sell-side leads take the sale mandate, buy-side the purchase mandate.
func MandateFor(operation models.OperationType) models.DocumentType {
	if operation == models.OperationCompra {
		return models.DocumentMandatoCompra
	}
	return models.DocumentMandatoVenta
}

// IsDocumentSigned reports whether any non-cancelled document of the type
// reached signed status.
func (s *State) IsDocumentSigned(t models.DocumentType) bool {
	for _, d := range s.docs {
		if d.DocumentType == t && d.Status == models.StatusSigned {
			return true
		}
	}
	return false
}

// IsDocumentGenerated reports whether a live document of the type exists:
// anything except cancelled or expired counts.
func (s *State) IsDocumentGenerated(t models.DocumentType) bool {
	for _, d := range s.docs {
		if d.DocumentType != t {
			continue
		}
		switch d.Status {
		case models.StatusDraft, models.StatusSent, models.StatusViewed, models.StatusSigned:
			return true
		}
	}
	return false
}

// Status derives the aggregate phase state:
//
//	pending  - no documents at all
//	complete - NDA signed and a mandate signed
//	blocked  - a live mandate exists before the NDA was signed
//	active   - anything else in between
func (s *State) Status() PhaseStatus {
	if len(s.docs) == 0 {
		return PhasePending
	}
	ndaSigned := s.IsDocumentSigned(models.DocumentNDA)
	if ndaSigned && (s.IsDocumentSigned(models.DocumentMandatoVenta) || s.IsDocumentSigned(models.DocumentMandatoCompra)) {
		return PhaseComplete
	}
	if !ndaSigned && s.mandateExistsNotCancelled() {
		return PhaseBlocked
	}
	return PhaseActive
}

func (s *State) mandateExistsNotCancelled() bool {
	for _, d := range s.docs {
		if d.DocumentType == models.DocumentNDA || d.Status == models.StatusCancelled {
			continue
		}
		return true
	}
	return false
}

// Progress scores the phase 0..100. The NDA and the applicable mandate
// each contribute 25 points when generated and 50 when signed; there is
// no partial credit between those thresholds.
func (s *State) Progress() int {
	return s.docScore(models.DocumentNDA) + s.docScore(MandateFor(s.operation))
}

func (s *State) docScore(t models.DocumentType) int {
	if s.IsDocumentSigned(t) {
		return 50
	}
	if s.IsDocumentGenerated(t) {
		return 25
	}
	return 0
}

// SuggestedDocument picks the next document to generate: the NDA until it
// is signed, then the applicable mandate until it exists, then nothing.
func (s *State) SuggestedDocument() (models.DocumentType, bool) {
	if !s.IsDocumentSigned(models.DocumentNDA) {
		return models.DocumentNDA, true
	}
	mandate := MandateFor(s.operation)
	if !s.IsDocumentGenerated(mandate) {
		return mandate, true
	}
	return "", false
}

// Requirements summarizes every document type's state for the lead. The
// mandate type the lead's operation never uses is reported as "na".
func (s *State) Requirements() map[models.DocumentType]RequirementState {
	applicable := MandateFor(s.operation)
	out := make(map[models.DocumentType]RequirementState, 3)
	for _, t := range []models.DocumentType{models.DocumentNDA, models.DocumentMandatoVenta, models.DocumentMandatoCompra} {
		if t != models.DocumentNDA && t != applicable {
			out[t] = RequirementNotApplicable
			continue
		}
		switch {
		case s.IsDocumentSigned(t):
			out[t] = RequirementSigned
		case s.IsDocumentGenerated(t):
			out[t] = RequirementGenerated
		default:
			out[t] = RequirementPending
		}
	}
	return out
}

// Decision is the answer to a pipeline advancement check. Reason is set
// only on refusal.
type Decision struct {
	Allowed bool
	Reason  string
}

// CanAdvanceToStatus consults the blocking rules: when an active rule
// names the target status and its required document is not signed, the
// move is refused with the rule's reason. Rules scoped to an operation
// type only apply to leads of that type.
func (s *State) CanAdvanceToStatus(target string, rules []models.WorkflowRule) Decision {
	for _, r := range rules {
		if !r.Active || r.RuleType != models.RuleBlocking || r.TargetStatus != target {
			continue
		}
		if r.OperationType != "" && r.OperationType != s.operation {
			continue
		}
		if !s.IsDocumentSigned(r.RequiredDocument) {
			return Decision{Reason: r.Reason}
		}
	}
	return Decision{Allowed: true}
}

// DocumentSource fetches a lead's document set.
type DocumentSource interface {
	DocumentsByLead(ctx context.Context, leadID uint64) ([]models.Fase0Document, error)
}

// RuleSource fetches the active workflow rules.
type RuleSource interface {
	ActiveWorkflowRules(ctx context.Context) ([]models.WorkflowRule, error)
}

// Overview is the full Fase 0 report for a lead, as served to clients.
type Overview struct {
	Status            PhaseStatus                              `json:"status"`
	Progress          int                                      `json:"progress"`
	SuggestedDocument *models.DocumentType                     `json:"suggested_document"`
	Requirements      map[models.DocumentType]RequirementState `json:"requirements"`
}

// Engine answers workflow questions for leads by pulling documents and
// rules from its collaborators.
type Engine struct {
	docs  DocumentSource
	rules RuleSource
}

func NewEngine(docs DocumentSource, rules RuleSource) *Engine {
	return &Engine{docs: docs, rules: rules}
}

func (e *Engine) StateFor(ctx context.Context, lead models.Lead) (*State, error) {
	docs, err := e.docs.DocumentsByLead(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	return NewState(lead.OperationType, docs), nil
}

func (e *Engine) Overview(ctx context.Context, lead models.Lead) (Overview, error) {
	state, err := e.StateFor(ctx, lead)
	if err != nil {
		return Overview{}, err
	}
	ov := Overview{
		Status:       state.Status(),
		Progress:     state.Progress(),
		Requirements: state.Requirements(),
	}
	if t, ok := state.SuggestedDocument(); ok {
		ov.SuggestedDocument = &t
	}
	return ov, nil
}

// CheckAdvance gates a pipeline move for a lead.
func (e *Engine) CheckAdvance(ctx context.Context, lead models.Lead, target string) (Decision, error) {
	state, err := e.StateFor(ctx, lead)
	if err != nil {
		return Decision{}, err
	}
	rules, err := e.rules.ActiveWorkflowRules(ctx)
	if err != nil {
		return Decision{}, err
	}
	return state.CanAdvanceToStatus(target, rules), nil
}
