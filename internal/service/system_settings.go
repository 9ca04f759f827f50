package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"valora/internal/models"
	"valora/internal/repository"
)

const (
	FeatureAutosave           = "feature.autosave"
	FeatureDocumentExpiry     = "feature.document_expiry"
	FeatureStaleValuationGC   = "feature.stale_valuation_sweep"
	FeatureSessionGC          = "feature.session_gc"
	FeatureRuleCache          = "feature.workflow_rule_cache"
	FeatureLeadAutoCreate     = "feature.lead_auto_create"
	FeaturePipelineBlocking   = "feature.pipeline_blocking"
	FeatureAnalyticsEndpoints = "feature.analytics"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureAutosave:           true,
		FeatureDocumentExpiry:     true,
		FeatureStaleValuationGC:   true,
		FeatureSessionGC:          true,
		FeatureRuleCache:          true,
		FeatureLeadAutoCreate:     true,
		FeaturePipelineBlocking:   true,
		FeatureAnalyticsEndpoints: true,
	}
}

type SystemSettingsService struct {
	Repo repository.Repository
}

func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.SystemSetting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	raw, _ := json.Marshal(enabled)
	item := &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: "feature switch",
		UpdatedAt:   time.Now().UTC(),
	}
	return s.Repo.UpsertSystemSetting(ctx, item)
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}
