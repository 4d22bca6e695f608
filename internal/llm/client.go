// Package llm defines the generation client interface and the pluggable
// provider system behind the dispatch boundary.
//
// Each provider is a direct HTTP client normalized to the same request
// and response shape: instruction text, user text, optional temperature
// and output cap, optional web-search augmentation. Credential material
// never leaves this boundary.
package llm

import (
	"context"
	"fmt"
	"time"
)

// CompletionRequest is the normalized input to a Complete call.
type CompletionRequest struct {
	Model       string   `json:"model,omitempty"`
	System      string   `json:"system,omitempty"`
	Input       string   `json:"input"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	WebSearch   bool     `json:"webSearch,omitempty"` // request search augmentation
}

// CompletionResponse is the result of a completion.
type CompletionResponse struct {
	Text     string        `json:"text"`
	Model    string        `json:"model,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ImageReference is one inline reference image for generation.
type ImageReference struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// ImageRequest is the normalized input to a GenerateImage call.
type ImageRequest struct {
	Prompt      string           `json:"prompt"`
	References  []ImageReference `json:"references,omitempty"` // at most 14
	AspectRatio string           `json:"aspectRatio,omitempty"`
	Resolution  string           `json:"resolution,omitempty"` // "1K" | "2K" | "4K"
	WebSearch   bool             `json:"webSearch,omitempty"`
}

// ImageResponse carries the generated image plus any accompanying text.
type ImageResponse struct {
	Text     string `json:"text,omitempty"`
	Image    []byte `json:"image,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// Client is the interface all text providers must implement.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider tag (e.g., "claude", "gemini").
	Name() string
}

// ImageClient is implemented by providers that can generate images.
type ImageClient interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// ProviderError is returned when a provider call fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP-like status code (401, 429, 500, etc.)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
