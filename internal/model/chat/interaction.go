package chat

import "time"

// Interaction is one answered question kept in a session transcript.
// Answer holds the markdown source returned upstream, not the rendered HTML.
type Interaction struct {
	AssistantID string    `json:"tipo"`
	Question    string    `json:"pergunta"`
	Answer      string    `json:"resposta"`
	Timestamp   time.Time `json:"timestamp"`
}
