package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"valora/internal/repository"
)

// DocumentExpiryService sweeps sent and viewed documents past their
// expiry date into expired status.
type DocumentExpiryService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Flags  *SystemSettingsService
}

func (s *DocumentExpiryService) Run(ctx context.Context, interval time.Duration) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil && s.Logger != nil {
			s.Logger.Warn("document expiry sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *DocumentExpiryService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureDocumentExpiry, true) {
		return nil
	}
	n, err := s.Repo.ExpireDueDocuments(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("expired documents", zap.Int64("count", n))
	}
	return nil
}
