package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini implements the Completer interface for Google's Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a new Gemini provider.
func NewGemini(model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set")
	}
	baseURL := os.Getenv("FACET_GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	return &Gemini{
		apiKey:  key,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	body := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		},
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
		GenerationConfig: &geminiGenConfig{
			MaxOutputTokens: maxTokens,
		},
	}
	if req.Temperature > 0 {
		body.GenerationConfig.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp CompletionResponse
	err = retryWithBackoff(ctx, 3, func() error {
		respBody, err := postJSON(ctx, g.client, url, nil, payload)
		if err != nil {
			return err
		}

		var result geminiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}

		if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no content in response")
		}

		var content string
		for _, part := range result.Candidates[0].Content.Parts {
			content += part.Text
		}

		resp = CompletionResponse{
			Content: content,
			Usage: Usage{
				Prompt:     result.UsageMetadata.PromptTokenCount,
				Completion: result.UsageMetadata.CandidatesTokenCount,
				Total:      result.UsageMetadata.TotalTokenCount,
			},
		}
		return nil
	})

	return resp, err
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}
