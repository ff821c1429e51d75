package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements the Completer interface for Anthropic's API.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(model string) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}
	baseURL := os.Getenv("FACET_ANTHROPIC_BASE_URL")
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &Anthropic{
		apiKey:  key,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var resp CompletionResponse
	err = retryWithBackoff(ctx, 3, func() error {
		respBody, err := postJSON(ctx, a.client, a.baseURL, headers, payload)
		if err != nil {
			return err
		}

		var result anthropicResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}

		var content string
		for _, block := range result.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		if content == "" {
			return fmt.Errorf("empty text content in API response")
		}

		resp = CompletionResponse{
			Content: content,
			Usage: Usage{
				Prompt:     result.Usage.InputTokens,
				Completion: result.Usage.OutputTokens,
				Total:      result.Usage.InputTokens + result.Usage.OutputTokens,
			},
		}
		return nil
	})

	return resp, err
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
