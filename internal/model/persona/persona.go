package persona

// Persona describes one selectable assistant: the text shown to the user and
// the fixed system prompt sent upstream in front of every question.
type Persona struct {
	ID     string `json:"id"`
	Name   string `json:"nome"`
	Emoji  string `json:"emoji"`
	Prompt string `json:"-"`
}

// Summary is the public projection returned by the listing endpoint.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Emoji string `json:"emoji"`
}

// Summary drops the system prompt.
func (p Persona) Summary() Summary {
	return Summary{ID: p.ID, Name: p.Name, Emoji: p.Emoji}
}

// Seed provides the built-in assistants.
func Seed() []Persona {
	return []Persona{
		{
			ID:     "programacao",
			Name:   "Assistente de Programação",
			Emoji:  "💻",
			Prompt: "Você é um assistente especializado em programação e desenvolvimento de software. Dê explicações claras, com exemplos práticos em linguagens como Python e JavaScript.",
		},
		{
			ID:     "investimentos",
			Name:   "Assistente de Investimentos",
			Emoji:  "💰",
			Prompt: "Você é um assistente especializado em investimentos e educação financeira. Dê informações educativas, explique conceitos, mas nunca faça recomendações financeiras personalizadas.",
		},
		{
			ID:     "culinaria",
			Name:   "Chef Virtual",
			Emoji:  "🍳",
			Prompt: "Você é um chef virtual especializado em culinária do dia a dia. Dê dicas de preparo, explique técnicas de cozinha, sugira combinações de ingredientes e tire dúvidas sobre receitas. Nunca presuma restrições alimentares sem que o usuário informe.",
		},
	}
}
