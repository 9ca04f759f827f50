package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"valora/internal/fase0"
	"valora/internal/models"
	"valora/internal/pipeline"
	"valora/internal/repository"
)

var ErrUnknownStatus = errors.New("unknown pipeline status")

// MoveRefusedError reports a pipeline move the board or the workflow
// rules refused.
type MoveRefusedError struct {
	Reason string
}

func (e *MoveRefusedError) Error() string {
	return e.Reason
}

// LeadService owns pipeline moves: board legality, document blocking
// rules and the status history trail.
type LeadService struct {
	Repo   repository.Repository
	Rules  *WorkflowRulesService
	Logger *zap.Logger
	Flags  *SystemSettingsService
}

// ChangeStatus moves a lead on the board. Moves the transition table
// does not allow, and moves a blocking rule refuses, both fail with a
// reasoned error; accepted moves append a history row.
func (s *LeadService) ChangeStatus(ctx context.Context, leadID uint64, target, reason, changedBy string) (*models.Lead, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if !pipeline.IsKnown(target) {
		return nil, ErrUnknownStatus
	}
	lead, err := s.Repo.GetLeadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	if lead.PipelineStatus == target {
		return lead, nil
	}
	if !pipeline.CanMove(lead.PipelineStatus, target) {
		return nil, &MoveRefusedError{Reason: "el tablero no permite mover de " + lead.PipelineStatus + " a " + target}
	}

	if s.Flags == nil || s.Flags.IsEnabled(ctx, FeaturePipelineBlocking, true) {
		docs, err := s.Repo.DocumentsByLead(ctx, leadID)
		if err != nil {
			return nil, err
		}
		rules, err := s.activeRules(ctx)
		if err != nil {
			return nil, err
		}
		state := fase0.NewState(lead.OperationType, docs)
		if d := state.CanAdvanceToStatus(target, rules); !d.Allowed {
			return nil, &MoveRefusedError{Reason: d.Reason}
		}
	}

	if err := s.Repo.UpdateLeadStatus(ctx, leadID, target); err != nil {
		return nil, err
	}
	change := &models.LeadStatusChange{
		LeadID:     leadID,
		FromStatus: lead.PipelineStatus,
		ToStatus:   target,
		Reason:     reason,
		ChangedBy:  changedBy,
	}
	if err := s.Repo.InsertLeadStatusChange(ctx, change); err != nil && s.Logger != nil {
		s.Logger.Warn("status history write failed", zap.Uint64("lead_id", leadID), zap.Error(err))
	}

	lead.PipelineStatus = target
	if s.Logger != nil {
		s.Logger.Info("lead moved",
			zap.Uint64("lead_id", leadID),
			zap.String("from", change.FromStatus),
			zap.String("to", target))
	}
	return lead, nil
}

func (s *LeadService) activeRules(ctx context.Context) ([]models.WorkflowRule, error) {
	if s.Rules != nil {
		return s.Rules.ActiveWorkflowRules(ctx)
	}
	return s.Repo.ActiveWorkflowRules(ctx)
}

// Board groups leads by pipeline status in column order.
func (s *LeadService) Board(ctx context.Context, limitPerColumn int) (map[string][]models.Lead, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	out := make(map[string][]models.Lead, len(pipeline.Statuses()))
	for _, status := range pipeline.Statuses() {
		st := status
		leads, err := s.Repo.ListLeads(ctx, repository.ListLeadsParams{
			Limit:          limitPerColumn,
			PipelineStatus: &st,
			OrderBy:        "updated_at",
		})
		if err != nil {
			return nil, err
		}
		out[status] = leads
	}
	return out, nil
}
