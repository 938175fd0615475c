package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// RetryConfig controls WithRetry. MaxRetries counts attempts after the first.
type RetryConfig struct {
	MaxRetries uint64
	Base       time.Duration
}

type retrying struct {
	next Generator
	cfg  RetryConfig
}

// WithRetry retries transient failures of gen with jittered exponential
// backoff. With MaxRetries zero gen is returned unchanged.
func WithRetry(gen Generator, cfg RetryConfig) Generator {
	if cfg.MaxRetries == 0 {
		return gen
	}
	if cfg.Base <= 0 {
		cfg.Base = 500 * time.Millisecond
	}
	return &retrying{next: gen, cfg: cfg}
}

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	backoff := retry.NewExponential(r.cfg.Base)
	backoff = retry.WithJitterPercent(10, backoff)
	backoff = retry.WithMaxRetries(r.cfg.MaxRetries, backoff)

	var (
		text    string
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			text = out
			return nil
		}
		if !Retryable(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("upstream attempt failed, retrying")
		return retry.RetryableError(err)
	})
	return text, err
}

// Retryable reports whether err is worth another attempt. Empty replies,
// cancellations and 4xx answers other than 429 are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return true
}
