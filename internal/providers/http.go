package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// postJSON sends a JSON payload and classifies HTTP failures into the
// retry taxonomy: 429 is rate limiting, 401/403 is an auth failure,
// 5xx is a transient server error. Anything else non-200 is terminal.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == 429:
		return nil, &rateLimitError{}
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return nil, &authError{message: string(body)}
	case resp.StatusCode >= 500:
		return nil, &serverError{statusCode: resp.StatusCode, body: string(body)}
	case resp.StatusCode != 200:
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
