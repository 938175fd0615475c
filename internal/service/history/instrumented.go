package history

import (
	"context"

	"github.com/zhouzirui/assistentes/backend/internal/metrics"
	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

type instrumented struct {
	Store
	backend string
}

// Instrument counts every Store call in the history operations metric.
func Instrument(store Store, backend Backend) Store {
	return &instrumented{Store: store, backend: string(backend)}
}

func (s *instrumented) Append(ctx context.Context, sessionID string, item chat.Interaction) error {
	err := s.Store.Append(ctx, sessionID, item)
	metrics.HistoryOperations.WithLabelValues(s.backend, "append", metrics.Outcome(err)).Inc()
	return err
}

func (s *instrumented) List(ctx context.Context, sessionID string) ([]chat.Interaction, error) {
	items, err := s.Store.List(ctx, sessionID)
	metrics.HistoryOperations.WithLabelValues(s.backend, "list", metrics.Outcome(err)).Inc()
	return items, err
}

func (s *instrumented) Clear(ctx context.Context, sessionID string) error {
	err := s.Store.Clear(ctx, sessionID)
	metrics.HistoryOperations.WithLabelValues(s.backend, "clear", metrics.Outcome(err)).Inc()
	return err
}
