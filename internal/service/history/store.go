// Package history keeps the rolling per-session transcript of answered
// questions. Every backend honors the same bound: a session never holds more
// than MaxInteractions entries and the oldest are evicted first.
package history

import (
	"context"
	"time"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

// MaxInteractions bounds the length of a session transcript.
const MaxInteractions = 50

// Store owns all session transcripts.
type Store interface {
	// Append adds the interaction at the end of the session, creating the
	// session when absent and trimming the front back to MaxInteractions.
	Append(ctx context.Context, sessionID string, item chat.Interaction) error
	// List returns the session transcript in chronological order. Unknown
	// sessions yield an empty slice and no error.
	List(ctx context.Context, sessionID string) ([]chat.Interaction, error)
	// Clear removes the session. Clearing an unknown session is a no-op.
	Clear(ctx context.Context, sessionID string) error
}

// Sweeper is implemented by backends that cannot expire sessions natively.
// Sweep drops every session whose latest append happened before cutoff.
type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// trim keeps the newest MaxInteractions entries. The result never aliases the
// evicted prefix so the dropped items can be collected.
func trim(items []chat.Interaction) []chat.Interaction {
	if len(items) <= MaxInteractions {
		return items
	}
	kept := make([]chat.Interaction, MaxInteractions, MaxInteractions+1)
	copy(kept, items[len(items)-MaxInteractions:])
	return kept
}
