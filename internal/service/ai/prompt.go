package ai

import (
	"strings"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
	"github.com/zhouzirui/assistentes/backend/internal/model/persona"
)

// Context window policy. Neither value is negotiable by callers.
const (
	// ContextTurns is how many earlier interactions with the same assistant
	// are replayed in front of a new question.
	ContextTurns = 3
	// AnswerPreviewChars caps each replayed answer, counted in characters.
	AnswerPreviewChars = 150
)

const (
	contextHeader  = "\n\nContexto da conversa anterior:\n"
	questionPrefix = "\n\nPergunta atual: "
	previewSuffix  = "..."
)

// SelectContext returns the latest ContextTurns interactions held with
// assistantID, oldest first.
func SelectContext(history []chat.Interaction, assistantID string) []chat.Interaction {
	selected := make([]chat.Interaction, 0, ContextTurns)
	for i := len(history) - 1; i >= 0 && len(selected) < ContextTurns; i-- {
		if history[i].AssistantID == assistantID {
			selected = append(selected, history[i])
		}
	}
	for l, r := 0, len(selected)-1; l < r; l, r = l+1, r-1 {
		selected[l], selected[r] = selected[r], selected[l]
	}
	return selected
}

// BuildPrompt assembles the text sent upstream: the persona system prompt,
// the replayed context when the session already talked to this persona, and
// the new question.
func BuildPrompt(p persona.Persona, history []chat.Interaction, question string) string {
	var b strings.Builder
	b.WriteString(p.Prompt)

	if turns := SelectContext(history, p.ID); len(turns) > 0 {
		b.WriteString(contextHeader)
		for _, turn := range turns {
			b.WriteString("P: ")
			b.WriteString(turn.Question)
			b.WriteString("\nR: ")
			b.WriteString(preview(turn.Answer))
			b.WriteString(previewSuffix)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(questionPrefix)
	b.WriteString(question)
	return b.String()
}

// preview cuts answer to AnswerPreviewChars characters. The cut is not
// word-aware and the ellipsis is appended by the caller even for short answers.
func preview(answer string) string {
	runes := []rune(answer)
	if len(runes) <= AnswerPreviewChars {
		return answer
	}
	return string(runes[:AnswerPreviewChars])
}
