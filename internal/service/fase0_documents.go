package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"valora/internal/fase0"
	"valora/internal/models"
	"valora/internal/repository"
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrUnknownDocument  = errors.New("unknown document type")
)

// GenerationRefusedError reports a document generation the workflow rules
// do not allow yet.
type GenerationRefusedError struct {
	Reason string
}

func (e *GenerationRefusedError) Error() string {
	return e.Reason
}

// Fase0DocumentService owns document generation and lifecycle moves. It
// enforces the NDA-before-mandate rule on creation and the transition
// table on every status change.
type Fase0DocumentService struct {
	Repo     repository.Repository
	Rules    *WorkflowRulesService
	Logger   *zap.Logger
	Validity time.Duration
}

// CreateDocument generates a draft document for a lead. An empty
// docType falls back to the workflow engine's suggestion.
func (s *Fase0DocumentService) CreateDocument(ctx context.Context, leadID uint64, docType models.DocumentType, filledData datatypes.JSON) (*models.Fase0Document, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	lead, err := s.Repo.GetLeadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	docs, err := s.Repo.DocumentsByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	state := fase0.NewState(lead.OperationType, docs)

	if docType == "" {
		suggested, ok := state.SuggestedDocument()
		if !ok {
			return nil, &GenerationRefusedError{Reason: "no hay documentos pendientes para este lead"}
		}
		docType = suggested
	}
	if !docType.Valid() {
		return nil, ErrUnknownDocument
	}

	if docType != models.DocumentNDA {
		if docType != fase0.MandateFor(lead.OperationType) {
			return nil, &GenerationRefusedError{Reason: "el tipo de mandato no corresponde a la operación del lead"}
		}
		if !state.IsDocumentSigned(models.DocumentNDA) {
			return nil, &GenerationRefusedError{Reason: "el NDA debe estar firmado antes de generar el mandato"}
		}
	}

	item := &models.Fase0Document{
		LeadID:       leadID,
		DocumentType: docType,
		Status:       models.StatusDraft,
		FilledData:   filledData,
	}
	if s.Validity > 0 {
		expires := time.Now().UTC().Add(s.Validity)
		item.ExpiresAt = &expires
	}
	if err := s.Repo.InsertFase0Document(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("document generated",
			zap.Uint64("lead_id", leadID),
			zap.String("type", string(docType)))
	}
	return item, nil
}

// ChangeStatus applies a lifecycle move, stamping the milestone reached.
func (s *Fase0DocumentService) ChangeStatus(ctx context.Context, id uint64, target models.DocumentStatus) (*models.Fase0Document, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	doc, err := s.Repo.GetFase0DocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	next, err := fase0.Transition(doc.Status, target)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{}
	switch next {
	case models.StatusSent:
		updates["sent_at"] = now
	case models.StatusViewed:
		updates["viewed_at"] = now
	case models.StatusSigned:
		updates["signed_at"] = now
	}
	if err := s.Repo.UpdateFase0DocumentStatus(ctx, id, next, updates); err != nil {
		return nil, err
	}

	doc.Status = next
	switch next {
	case models.StatusSent:
		doc.SentAt = &now
	case models.StatusViewed:
		doc.ViewedAt = &now
	case models.StatusSigned:
		doc.SignedAt = &now
	}
	return doc, nil
}
