package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/assistentes/backend/internal/metrics"
)

// RunJanitor sweeps sessions idle for longer than ttl until ctx is done.
// The sweep interval is a quarter of the ttl, clamped to [1s, 5m].
func RunJanitor(ctx context.Context, sweeper Sweeper, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	interval := ttl / 4
	switch {
	case interval < time.Second:
		interval = time.Second
	case interval > 5*time.Minute:
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := sweeper.Sweep(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("history sweep failed")
				continue
			}
			if removed > 0 {
				metrics.SessionsSwept.Add(float64(removed))
				log.Debug().Int("sessions", removed).Msg("swept idle sessions")
			}
		}
	}
}
