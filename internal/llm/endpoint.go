package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/version"
)

// HTTPEndpoint posts edit requests as JSON to a code-edit service and reads
// {"code": "..."} back. The same URL serves single and batch requests; a
// batch request carries "edits" instead of "instructions".
type HTTPEndpoint struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPEndpoint creates an endpoint client. apiKey, when set, is sent as a
// bearer token.
func NewHTTPEndpoint(url, apiKey string, timeout time.Duration) *HTTPEndpoint {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPEndpoint{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (e *HTTPEndpoint) Name() string {
	return "http"
}

// EditCode implements CodeEditor.
func (e *HTTPEndpoint) EditCode(ctx context.Context, req EditRequest) (string, error) {
	return e.post(ctx, req)
}

// BatchEdit implements BatchEditor.
func (e *HTTPEndpoint) BatchEdit(ctx context.Context, req BatchRequest) (string, error) {
	return e.post(ctx, req)
}

type endpointResponse struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

func (e *HTTPEndpoint) post(ctx context.Context, payload interface{}) (string, error) {
	if strings.TrimSpace(e.url) == "" {
		return "", veditErrors.NewConfigError(veditErrors.ErrCodeConfigInvalid, "code-edit endpoint URL not configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", veditErrors.WrapNetwork(err, veditErrors.ErrCodeAIRequest, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", veditErrors.WrapNetwork(err, veditErrors.ErrCodeAIRequest, "failed to read response")
	}

	var parsed endpointResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("endpoint error: status %d", resp.StatusCode)
		if decodeErr == nil && parsed.Error != "" {
			msg = "endpoint error: " + parsed.Error
		}
		return "", veditErrors.NewNetworkError(veditErrors.ErrCodeAIRequest, msg, nil).
			WithContext("status", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to parse response: %w", decodeErr)
	}

	return parsed.Code, nil
}
