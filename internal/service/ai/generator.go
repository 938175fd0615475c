package ai

import (
	"context"
	"errors"
	"time"

	"github.com/zhouzirui/assistentes/backend/internal/metrics"
)

// ErrEmptyResponse reports an upstream reply that carried no usable text.
var ErrEmptyResponse = errors.New("upstream returned no usable candidate")

// Generator produces an answer for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type instrumented struct {
	next     Generator
	provider string
}

// Instrument records the latency of every upstream attempt.
func Instrument(gen Generator, provider string) Generator {
	return &instrumented{next: gen, provider: provider}
}

func (g *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, prompt)
	metrics.UpstreamLatency.WithLabelValues(g.provider, metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	return text, err
}
