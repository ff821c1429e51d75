package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Completer interface for OpenAI's API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	baseURL := os.Getenv("FACET_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  key,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	payload, err := json.Marshal(newChatRequest(o.model, req))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}

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

// newChatRequest builds an OpenAI-style chat completion request. Ollama
// and LM Studio speak the same dialect.
func newChatRequest(model string, req CompletionRequest) chatRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	out := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		out.Temperature = &req.Temperature
	}
	return out
}

func parseChatResponse(respBody []byte) (CompletionResponse, error) {
	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return CompletionResponse{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("no choices in response")
	}
	if result.Choices[0].Message.Content == "" {
		return CompletionResponse{}, fmt.Errorf("empty text content in API response")
	}
	total := result.Usage.TotalTokens
	if total == 0 {
		total = result.Usage.PromptTokens + result.Usage.CompletionTokens
	}
	return CompletionResponse{
		Content: result.Choices[0].Message.Content,
		Usage: Usage{
			Prompt:     result.Usage.PromptTokens,
			Completion: result.Usage.CompletionTokens,
			Total:      total,
		},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
