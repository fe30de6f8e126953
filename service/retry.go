package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
)

// retrier re-runs operations that failed with a storage error. Every other
// error kind is returned on the first attempt.
type retrier struct {
	maxAttempts int
	initial     time.Duration
	log         logger.ILogger
}

func newRetrier(maxAttempts int, initial time.Duration, log logger.ILogger) retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	return retrier{maxAttempts: maxAttempts, initial: initial, log: log}
}

func (r retrier) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxAttempts-1)), ctx)
}

func retryWithData[T any](ctx context.Context, r retrier, op string, fn func() (T, error)) (T, error) {
	var lastErr error

	res, err := backoff.RetryNotifyWithData(func() (T, error) {
		v, err := fn()
		if err != nil {
			lastErr = err
			if !errs.IsRetryable(err) {
				return v, backoff.Permanent(err)
			}
		}
		return v, err
	}, r.policy(ctx), func(err error, next time.Duration) {
		r.log.Warning("retrying after storage error",
			logger.String("op", op),
			logger.Duration("next", next),
			logger.Error(err),
		)
	})

	// Context expiry between attempts: report the storage failure, not the context.
	if err != nil && lastErr != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return res, lastErr
	}
	return res, err
}
