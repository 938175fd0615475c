package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
	"github.com/zhouzirui/assistentes/backend/internal/model/persona"
	"github.com/zhouzirui/assistentes/backend/internal/service/ai"
	"github.com/zhouzirui/assistentes/backend/internal/service/history"
	"github.com/zhouzirui/assistentes/backend/pkg/markdown"
)

// DefaultSessionID is the bucket used when a caller sends no session id.
// Every such caller shares it.
const DefaultSessionID = "default"

var (
	ErrMessageRequired      = errors.New("message is required")
	ErrAssistantRequired    = errors.New("assistant id is required")
	ErrUnknownAssistant     = errors.New("unknown assistant")
	ErrSessionRequired      = errors.New("session id is required")
	ErrUpstream             = errors.New("upstream generation failed")
	ErrGeneratorUnavailable = errors.New("no generation provider configured")
)

// Request is one user question.
type Request struct {
	Message     string
	AssistantID string
	SessionID   string
}

// Reply is the answer handed back to the UI.
type Reply struct {
	HTML      string    `json:"respostaHTML"`
	Markdown  string    `json:"respostaMarkdown"`
	Assistant string    `json:"assistente"`
	Timestamp time.Time `json:"timestamp"`
}

// Options tunes request handling.
type Options struct {
	// RequireSessionID rejects requests without a session id instead of
	// routing them to DefaultSessionID.
	RequireSessionID bool
	// Timeout bounds the upstream call; zero leaves only the caller's context.
	Timeout time.Duration
}

// Service answers questions and owns the transcript lifecycle.
type Service struct {
	personas  persona.Store
	history   history.Store
	generator ai.Generator
	renderer  markdown.Renderer
	opts      Options
	now       func() time.Time
}

// NewService wires the chat flow. A nil generator makes every Ask fail with
// ErrUpstream while history endpoints keep working.
func NewService(personas persona.Store, store history.Store, generator ai.Generator, renderer markdown.Renderer, opts Options) *Service {
	return &Service{
		personas:  personas,
		history:   store,
		generator: generator,
		renderer:  renderer,
		opts:      opts,
		now:       time.Now,
	}
}

// Ask validates the request, builds the prompt from the session transcript,
// calls upstream once through the configured generator and, only on success,
// records the interaction.
func (s *Service) Ask(ctx context.Context, req Request) (Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Reply{}, ErrMessageRequired
	}
	if req.AssistantID == "" {
		return Reply{}, ErrAssistantRequired
	}

	p, ok := s.personas.FindByID(req.AssistantID)
	if !ok {
		return Reply{}, ErrUnknownAssistant
	}

	sessionID, err := s.resolveSession(req.SessionID)
	if err != nil {
		return Reply{}, err
	}

	transcript, err := s.history.List(ctx, sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load history: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("session", sessionID).Str("assistant", p.ID).Logger()

	answer, err := s.generate(ctx, ai.BuildPrompt(p, transcript, req.Message))
	if err != nil {
		logger.Error().Err(err).Msg("generation failed")
		return Reply{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	rendered, err := s.renderer.Render(answer)
	if err != nil {
		return Reply{}, err
	}

	now := s.now().UTC()
	item := chat.Interaction{
		AssistantID: p.ID,
		Question:    req.Message,
		Answer:      answer,
		Timestamp:   now,
	}
	if err := s.history.Append(ctx, sessionID, item); err != nil {
		return Reply{}, fmt.Errorf("failed to record interaction: %w", err)
	}

	logger.Debug().Int("answer_len", len(answer)).Msg("answered")

	return Reply{
		HTML:      rendered,
		Markdown:  answer,
		Assistant: p.Name,
		Timestamp: now,
	}, nil
}

// History returns the session transcript, empty for unknown sessions.
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Interaction, error) {
	return s.history.List(ctx, sessionID)
}

// ClearHistory drops the session transcript.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	return s.history.Clear(ctx, sessionID)
}

func (s *Service) resolveSession(sessionID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	if s.opts.RequireSessionID {
		return "", ErrSessionRequired
	}
	return DefaultSessionID, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", ErrGeneratorUnavailable
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	return s.generator.Generate(ctx, prompt)
}

// IsClientError reports whether err stems from invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMessageRequired) ||
		errors.Is(err, ErrAssistantRequired) ||
		errors.Is(err, ErrUnknownAssistant) ||
		errors.Is(err, ErrSessionRequired)
}
