package outbound

import "context"

// ChatTurn is a single prior exchange handed to the model as context
type ChatTurn struct {
	Role    string
	Content string
}

// LLMService defines the interface to the language-model collaborator.
// Treated as non-deterministic, occasionally malformed, and the sole
// paid/slow dependency; callers bound it with a context deadline.
type LLMService interface {
	Generate(ctx context.Context, prompt string, history []ChatTurn) (string, error)
}
