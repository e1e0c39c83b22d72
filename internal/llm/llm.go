// Package llm provides clients for the remote code-edit endpoints used by
// the AI fallback editor and the batch orchestrator.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EditRequest asks for one window of code to be rewritten.
type EditRequest struct {
	Code         string `json:"code"`
	Instructions string `json:"instructions"`
	// Language is a hint such as "tsx"
	Language string `json:"language,omitempty"`
}

// ElementIntent describes the changes wanted for one element in a batch.
type ElementIntent struct {
	ElementID    string `json:"elementId"`
	SourceLine   int    `json:"sourceLine"`
	OriginalText string `json:"originalText,omitempty"`
	Instructions string `json:"instructions"`
}

// BatchRequest asks for a whole file to be rewritten for several elements.
type BatchRequest struct {
	Code  string          `json:"code"`
	Edits []ElementIntent `json:"edits"`
}

// CodeEditor rewrites a code window and returns the new text.
type CodeEditor interface {
	EditCode(ctx context.Context, req EditRequest) (string, error)
}

// BatchEditor rewrites a full file for several element intents.
type BatchEditor interface {
	BatchEdit(ctx context.Context, req BatchRequest) (string, error)
}

// Client is an endpoint that serves both request kinds.
type Client interface {
	CodeEditor
	BatchEditor
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag. Text without a fence is returned trimmed of blank edges.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return strings.Trim(text, "\n")
	}

	newline := strings.IndexByte(trimmed, '\n')
	if newline < 0 {
		return ""
	}
	body := trimmed[newline+1:]
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimRight(body, "\n ")
}

// Config selects and configures a client.
type Config struct {
	// Provider is "openai" or "http"
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	// Endpoint is the URL used by the http provider
	Endpoint string
	Timeout  time.Duration
}

// New builds the client named by cfg.Provider.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case "http":
		return NewHTTPEndpoint(cfg.Endpoint, cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
