package service

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
)

// RateLookup reads a user's current hourly rate. found is false for a missing or
// inactive user.
type RateLookup interface {
	GetRate(ctx context.Context, userID int64) (rate decimal.Decimal, found bool, err error)
}

type rateLookupResult struct {
	rate  decimal.Decimal
	found bool
}

// RateResolver fetches the rate snapshot copied into each entry at write time.
// Lookups are bounded by a timeout and retried on infrastructure failure; a missing
// user is an answer, not a failure, and is never retried.
type RateResolver struct {
	users       RateLookup
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

func NewRateResolver(users RateLookup, lookupTimeout time.Duration, maxAttempts int, retryDelay time.Duration, logger *zap.Logger) *RateResolver {
	return &RateResolver{
		users:       users,
		timeout:     lookupTimeout,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

// Resolve returns the owner's current rate. It fails with a NotFoundError for a
// missing or inactive owner and a ResolverError when the lookup itself fails.
func (r *RateResolver) Resolve(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	rt := retry.New[rateLookupResult](retry.Config{
		MaxAttempts:   r.maxAttempts,
		InitialDelay:  r.retryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	tm := timeout.New[rateLookupResult](timeout.Config{
		DefaultTimeout: r.timeout,
	})

	res, err := tm.Execute(ctx, r.timeout, func(ctx context.Context) (rateLookupResult, error) {
		return rt.Do(ctx, func(ctx context.Context) (rateLookupResult, error) {
			rate, found, err := r.users.GetRate(ctx, ownerID)
			if err != nil {
				r.logger.Warn("Rate lookup failed", zap.Int64("owner_id", ownerID), zap.Error(err))
			}
			return rateLookupResult{rate: rate, found: found}, err
		})
	})
	if err != nil {
		return decimal.Zero, apperrors.NewResolverError("failed to resolve hourly rate", err)
	}
	if !res.found {
		return decimal.Zero, apperrors.NewNotFoundError("user", ownerID)
	}
	return res.rate, nil
}
