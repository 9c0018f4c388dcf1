package services

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const exchangeRateKey = "exchange:selling_rate"

// RateFetcher fetches the current exchange rate from the provider
type RateFetcher interface {
	FetchRate(ctx context.Context) (float64, error)
}

// ExchangeService serves the reference-to-display currency rate, cached in
// Redis for a TTL. Without Redis every request goes straight to the provider.
type ExchangeService struct {
	fetcher RateFetcher
	cache   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
}

// NewExchangeService creates an exchange-rate service. cache may be nil.
func NewExchangeService(fetcher RateFetcher, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *ExchangeService {
	return &ExchangeService{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Rate returns the current selling rate
func (s *ExchangeService) Rate(ctx context.Context) (float64, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, exchangeRateKey).Result(); err == nil {
			if rate, err := strconv.ParseFloat(cached, 64); err == nil {
				return rate, nil
			}
		}
	}

	rate, err := s.fetcher.FetchRate(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, exchangeRateKey, strconv.FormatFloat(rate, 'f', -1, 64), s.ttl).Err(); err != nil {
			s.logger.Warn("Failed to cache exchange rate", zap.Error(err))
		}
	}

	return rate, nil
}
