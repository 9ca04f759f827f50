package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"valora/internal/repository"
)

// StaleValuationService marks incomplete calculator sessions that have
// not been touched for MaxAge as abandoned, which keeps the dashboard's
// conversion numbers honest.
type StaleValuationService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Flags  *SystemSettingsService
	MaxAge time.Duration
}

func (s *StaleValuationService) Run(ctx context.Context, interval time.Duration) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil && s.Logger != nil {
			s.Logger.Warn("stale valuation sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *StaleValuationService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureStaleValuationGC, true) {
		return nil
	}
	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	n, err := s.Repo.MarkStaleValuationsAbandoned(ctx, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("marked stale valuations abandoned", zap.Int64("count", n))
	}
	return nil
}
