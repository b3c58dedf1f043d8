// Package llm defines the narrow contract the retrieval core has with a
// language-model service: turning text into a fixed-length embedding and
// turning a prompt into free text.
package llm

import "context"

// Message is a single role-tagged message in a completion prompt
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles used in completion prompts
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Embedder turns text into a fixed-length numeric embedding
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer turns an ordered list of role-tagged messages into free text
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
}

// Service combines embedding and completion, the full language-model contract
type Service interface {
	Embedder
	Completer
}
