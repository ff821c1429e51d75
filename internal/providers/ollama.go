package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Completer interface for Ollama and LM Studio
// via their OpenAI-compatible chat endpoint.
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates a new Ollama provider. No API key is required by default.
func NewOllama(model string) (*Ollama, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	// Accept OLLAMA_HOST with or without the /v1 path.
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	// Optional API key for servers that require it (e.g., LM Studio)
	apiKey := os.Getenv("FACET_OLLAMA_API_KEY")

	return &Ollama{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL + "/v1/chat/completions",
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	payload, err := json.Marshal(newChatRequest(o.model, req))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	headers := map[string]string{}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}

	var resp CompletionResponse
	err = retryWithBackoff(ctx, 3, func() error {
		respBody, err := postJSON(ctx, o.client, o.baseURL, headers, payload)
		if err != nil {
			return err
		}
		resp, err = parseChatResponse(respBody)
		return err
	})

	return resp, err
}
