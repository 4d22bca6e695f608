package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// defaultImageModel is used for GenerateImage calls.
const defaultImageModel = "gemini-2.5-flash-image"

// GeminiAPIClient is a direct HTTP client for the Google Gemini API.
// It also implements ImageClient.
type GeminiAPIClient struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGeminiAPIClient creates a new Gemini API client.
func NewGeminiAPIClient(apiKey, model string) *GeminiAPIClient {
	return &GeminiAPIClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider tag.
func (g *GeminiAPIClient) Name() string { return "gemini" }

// Complete sends a completion request to the Gemini API.
func (g *GeminiAPIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = g.model
	}

	body := g.buildRequestBody(req)
	result, err := g.call(ctx, model, body)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}

	return &CompletionResponse{
		Text:     text.String(),
		Model:    model,
		Duration: time.Since(start),
	}, nil
}

// GenerateImage sends an image generation request. Reference images are
// passed as inline data parts ahead of the prompt.
func (g *GeminiAPIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	parts := make([]map[string]interface{}, 0, len(req.References)+1)
	for _, ref := range req.References {
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]string{
				"mime_type": ref.MIMEType,
				"data":      ref.Data,
			},
		})
	}
	parts = append(parts, map[string]interface{}{"text": req.Prompt})

	genCfg := map[string]interface{}{
		"responseModalities": []string{"TEXT", "IMAGE"},
	}
	imgCfg := map[string]interface{}{}
	if req.AspectRatio != "" {
		imgCfg["aspectRatio"] = req.AspectRatio
	}
	if req.Resolution != "" {
		imgCfg["imageSize"] = req.Resolution
	}
	if len(imgCfg) > 0 {
		genCfg["imageConfig"] = imgCfg
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": parts},
		},
		"generationConfig": genCfg,
	}
	if req.WebSearch {
		body["tools"] = []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		}
	}

	result, err := g.call(ctx, defaultImageModel, body)
	if err != nil {
		return nil, err
	}

	out := &ImageResponse{}
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				out.Text += part.Text
			}
			if part.InlineData != nil && len(out.Image) == 0 {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("decoding image data: %w", err)
				}
				out.Image = data
				out.MIMEType = part.InlineData.MIMEType
			}
		}
	}
	if len(out.Image) == 0 {
		return nil, &ProviderError{Provider: "gemini", Message: "response contained no image"}
	}
	return out, nil
}

func (g *GeminiAPIClient) buildRequestBody(req CompletionRequest) map[string]interface{} {
	var prompt strings.Builder
	if req.System != "" {
		prompt.WriteString("System: ")
		prompt.WriteString(req.System)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(req.Input)

	genCfg := map[string]interface{}{}
	if req.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		genCfg["temperature"] = *req.Temperature
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": prompt.String()},
				},
			},
		},
	}
	if len(genCfg) > 0 {
		body["generationConfig"] = genCfg
	}
	if req.WebSearch {
		body["tools"] = []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		}
	}

	return body
}

// call posts a generateContent request for the given model.
func (g *GeminiAPIClient) call(ctx context.Context, model string, body map[string]interface{}) (*geminiAPIResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		geminiBaseURL, model, url.QueryEscape(g.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "gemini", Code: resp.StatusCode, Message: string(respBody)}
	}

	var result geminiAPIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// API response structures

type geminiAPIResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
		Role  string       `json:"role"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MIMEType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}
