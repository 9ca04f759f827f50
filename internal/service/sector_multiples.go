package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"valora/internal/cache"
	"valora/internal/models"
	"valora/internal/repository"
	"valora/internal/valuation"
)

const (
	multipleCacheTTL    = 5 * time.Minute
	multipleCachePrefix = "multiple:"
)

// SectorMultiplesService is the repository-backed MultipleTable: exact
// (sector, range) row, then the sector default row, then the global "*"
// row, then the configured fallback. Lookups are cached.
type SectorMultiplesService struct {
	Repo           repository.Repository
	Cache          cache.Store
	Logger         *zap.Logger
	GlobalMultiple float64
}

func (s *SectorMultiplesService) EnsureDefaults(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	existing, err := s.Repo.ListSectorMultiples(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, row := range valuation.DefaultMultiples(s.GlobalMultiple) {
		item := &models.SectorMultiple{
			Sector:        row.Sector,
			EmployeeRange: row.EmployeeRange,
			Multiple:      row.Multiple,
		}
		if err := s.Repo.UpsertSectorMultiple(ctx, item); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("seeded default sector multiples")
	}
	return nil
}

func (s *SectorMultiplesService) LookupMultiple(ctx context.Context, sector, employeeRange string) (decimal.Decimal, error) {
	if s == nil || s.Repo == nil {
		return decimal.NewFromFloat(s.fallback()), nil
	}
	key := multipleCachePrefix + sector + "|" + employeeRange
	if s.Cache != nil {
		if raw, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
			var cached decimal.Decimal
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	multiple, err := s.resolve(ctx, sector, employeeRange)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(multiple); err == nil {
			if err := s.Cache.Set(ctx, key, raw, multipleCacheTTL); err != nil && s.Logger != nil {
				s.Logger.Warn("multiple cache write failed", zap.Error(err))
			}
		}
	}
	return multiple, nil
}

func (s *SectorMultiplesService) resolve(ctx context.Context, sector, employeeRange string) (decimal.Decimal, error) {
	if row, err := s.Repo.GetSectorMultiple(ctx, sector, employeeRange); err != nil {
		return decimal.Decimal{}, err
	} else if row != nil {
		return row.Multiple, nil
	}
	if row, err := s.Repo.GetSectorMultiple(ctx, sector, ""); err != nil {
		return decimal.Decimal{}, err
	} else if row != nil {
		return row.Multiple, nil
	}
	if row, err := s.Repo.GetSectorMultiple(ctx, valuation.GlobalSector, ""); err != nil {
		return decimal.Decimal{}, err
	} else if row != nil {
		return row.Multiple, nil
	}
	return decimal.NewFromFloat(s.fallback()), nil
}

func (s *SectorMultiplesService) fallback() float64 {
	if s != nil && s.GlobalMultiple > 0 {
		return s.GlobalMultiple
	}
	return 4.0
}

// Invalidate drops the cached lookup after an admin edit.
func (s *SectorMultiplesService) Invalidate(ctx context.Context, sector, employeeRange string) {
	if s == nil || s.Cache == nil {
		return
	}
	_ = s.Cache.Delete(ctx, multipleCachePrefix+sector+"|"+employeeRange)
	_ = s.Cache.Delete(ctx, multipleCachePrefix+sector+"|")
	_ = s.Cache.Delete(ctx, multipleCachePrefix+valuation.GlobalSector+"|")
}
