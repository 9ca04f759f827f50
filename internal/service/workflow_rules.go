package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"valora/internal/cache"
	"valora/internal/fase0"
	"valora/internal/models"
	"valora/internal/repository"
)

const (
	ruleCacheKey = "workflow:rules:active"
	ruleCacheTTL = time.Minute
)

// WorkflowRulesService serves the blocking and auto-suggest rules to the
// workflow engine, with a short cache in front of the repository.
type WorkflowRulesService struct {
	Repo   repository.Repository
	Cache  cache.Store
	Logger *zap.Logger
	Flags  *SystemSettingsService
}

// EnsureDefaultRules seeds the standard rule set on an empty table.
func (s *WorkflowRulesService) EnsureDefaultRules(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	total, err := s.Repo.CountWorkflowRules(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	for _, rule := range fase0.DefaultRules() {
		r := rule
		if err := s.Repo.UpsertWorkflowRule(ctx, &r); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("seeded default workflow rules")
	}
	return nil
}

// ActiveWorkflowRules implements the workflow engine's rule source.
func (s *WorkflowRulesService) ActiveWorkflowRules(ctx context.Context) ([]models.WorkflowRule, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	useCache := s.Cache != nil &&
		(s.Flags == nil || s.Flags.IsEnabled(ctx, FeatureRuleCache, true))
	if useCache {
		if raw, ok, err := s.Cache.Get(ctx, ruleCacheKey); err == nil && ok {
			var cached []models.WorkflowRule
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	rules, err := s.Repo.ActiveWorkflowRules(ctx)
	if err != nil {
		return nil, err
	}
	if useCache {
		if raw, err := json.Marshal(rules); err == nil {
			if err := s.Cache.Set(ctx, ruleCacheKey, raw, ruleCacheTTL); err != nil && s.Logger != nil {
				s.Logger.Warn("rule cache write failed", zap.Error(err))
			}
		}
	}
	return rules, nil
}

// SuggestedFor resolves the auto-suggest rule for an operation type.
func (s *WorkflowRulesService) SuggestedFor(ctx context.Context, op models.OperationType) (models.DocumentType, bool, error) {
	rules, err := s.ActiveWorkflowRules(ctx)
	if err != nil {
		return "", false, err
	}
	for _, r := range rules {
		if r.RuleType == models.RuleAutoSuggest && r.OperationType == op {
			return r.SuggestedDocument, true, nil
		}
	}
	return "", false, nil
}

// Invalidate drops the cached rule set after an admin edit.
func (s *WorkflowRulesService) Invalidate(ctx context.Context) {
	if s == nil || s.Cache == nil {
		return
	}
	_ = s.Cache.Delete(ctx, ruleCacheKey)
}
