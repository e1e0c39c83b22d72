package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/version"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultTimeout       = 2 * time.Minute
)

const editSystemPrompt = "You edit JSX/TSX source code. Apply exactly the requested changes to the code you are given. " +
	"Reply with the complete edited code only: no explanations, no markdown, same indentation, same surrounding lines."

const batchSystemPrompt = "You edit JSX/TSX source files. Apply every requested element change to the file. " +
	"Reply with the complete edited file only: no explanations, no markdown. Leave unrelated code untouched."

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient talks to an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient creates a client. An empty API key falls back to the
// OPENAI_API_KEY environment variable.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// EditCode implements CodeEditor.
func (c *OpenAIClient) EditCode(ctx context.Context, req EditRequest) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Changes to apply:\n")
	prompt.WriteString(req.Instructions)
	prompt.WriteString("\n\nCode:\n")
	prompt.WriteString(req.Code)

	return c.complete(ctx, editSystemPrompt, prompt.String())
}

// BatchEdit implements BatchEditor.
func (c *OpenAIClient) BatchEdit(ctx context.Context, req BatchRequest) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Element changes:\n")
	for i, edit := range req.Edits {
		fmt.Fprintf(&prompt, "%d. Element %s at line %d", i+1, edit.ElementID, edit.SourceLine)
		if edit.OriginalText != "" {
			fmt.Fprintf(&prompt, " (text %q)", edit.OriginalText)
		}
		prompt.WriteString(": ")
		prompt.WriteString(edit.Instructions)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\nFile:\n")
	prompt.WriteString(req.Code)

	return c.complete(ctx, batchSystemPrompt, prompt.String())
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", veditErrors.NewConfigError(veditErrors.ErrCodeConfigInvalid, "OpenAI API key not configured")
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", veditErrors.WrapNetwork(err, veditErrors.ErrCodeAIRequest, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", veditErrors.WrapNetwork(err, veditErrors.ErrCodeAIRequest, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return "", veditErrors.NewNetworkError(veditErrors.ErrCodeAIRequest,
				"OpenAI API error: "+errorResp.Error.Message, nil).WithContext("status", resp.StatusCode)
		}
		return "", veditErrors.NewNetworkError(veditErrors.ErrCodeAIRequest,
			fmt.Sprintf("OpenAI API error: status %d", resp.StatusCode), nil).WithContext("status", resp.StatusCode)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
