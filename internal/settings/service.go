package settings

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Service is the read-through tax setting reader handed to the pricing
// engine. Cache problems degrade to a database read, never to an error the
// cart has to surface.
type Service struct {
	store Store
	cache SettingCache
	sfg   singleflight.Group
}

func NewService(store Store, cache SettingCache) *Service {
	return &Service{store: store, cache: cache}
}

// TaxRate returns the effective rate for one calculation: the configured
// rate when taxation is enabled, zero otherwise.
func (s *Service) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.getSetting(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !setting.Enabled {
		return decimal.Zero, nil
	}
	return setting.Rate, nil
}

func (s *Service) getSetting(ctx context.Context) (*TaxSetting, error) {
	// singleflight collapses concurrent cache misses into one db read
	v, err, _ := s.sfg.Do(taxSettingKey, func() (interface{}, error) {
		if s.cache != nil {
			setting, err := s.cache.Get(ctx)
			if err == nil {
				return setting, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				log.Printf("tax setting cache get error: %v", err)
			}
		}

		setting, err := s.store.GetTaxSetting(ctx)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if errSet := s.cache.Set(ctx, &setting); errSet != nil {
				log.Printf("tax setting cache set error: %v", errSet)
			}
		}
		return &setting, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TaxSetting), nil
}

// Invalidate drops the cached setting; called after an admin changes it.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx); err != nil {
		log.Printf("tax setting cache invalidate error: %v", err)
	}
}
