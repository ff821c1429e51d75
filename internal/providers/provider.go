package providers

import (
	"context"
	"fmt"
)

// CompletionRequest contains the prompts sent to an LLM.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Usage reports token consumption for a single completion.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// CompletionResponse contains the raw text returned by an LLM.
type CompletionResponse struct {
	Content string
	Usage   Usage
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Completer, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
