package rates

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/lock"
	"github.com/noah-isme/backend-freight/internal/obs"
)

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Service serves rate lookups through the cache and runs refreshes against
// the upstream provider.
type Service struct {
	Store    Store
	Cache    *Cache
	Provider Provider
	Locker   lock.Locker
	LockTTL  time.Duration
	Log      zerolog.Logger
}

// Get returns the stored rate for a currency, cache first.
func (s *Service) Get(ctx context.Context, currency string) (*Rate, error) {
	if !currencyRe.MatchString(currency) {
		return nil, common.NewValidationError("currency must be a 3-letter code", nil)
	}
	currency = strings.ToUpper(currency)

	if cached, err := s.Cache.Get(ctx, currency); err != nil {
		s.Log.Warn().Err(err).Str("currency", currency).Msg("rate cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	rate, err := s.Store.Get(ctx, currency)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("no exchange rate for " + currency)
		}
		return nil, err
	}
	if err := s.Cache.Set(ctx, rate); err != nil {
		s.Log.Warn().Err(err).Str("currency", currency).Msg("rate cache write failed")
	}
	return rate, nil
}

// Refresh pulls the latest rates from the provider, replaces the stored set
// and invalidates the cache. The distributed lock keeps concurrent worker
// replicas from refreshing at the same time.
func (s *Service) Refresh(ctx context.Context) error {
	err := s.Locker.WithLock(ctx, "lock:rates:refresh", s.LockTTL, func(ctx context.Context) error {
		rates, err := s.Provider.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("rates refresh: %w", err)
		}
		if len(rates) == 0 {
			return errors.New("rates refresh: provider returned no rates")
		}
		if err := s.Store.Upsert(ctx, rates); err != nil {
			return fmt.Errorf("rates refresh: %w", err)
		}
		if err := s.Cache.InvalidateAll(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("rate cache invalidation failed")
		}
		s.Log.Info().Int("count", len(rates)).Msg("exchange rates refreshed")
		return nil
	})
	if err != nil {
		obs.ObserveRatesRefresh("error")
		return err
	}
	obs.ObserveRatesRefresh("ok")
	return nil
}
