package llm

import (
	"context"
	"fmt"
	"strings"
)

// OfflineClient produces canned, deterministic outputs. It is the
// degraded mode used when no backend credential is available: workflows
// still run end to end, no network call is ever made.
type OfflineClient struct{}

// NewOfflineClient creates the offline provider.
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

// Name returns the provider tag.
func (o *OfflineClient) Name() string { return "offline" }

// Complete returns a canned note that embeds the input so downstream
// phases still carry the task text through.
func (o *OfflineClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	task := firstLine(req.Input)
	text := fmt.Sprintf("[offline] No generation backend is configured. Canned note for: %s", task)
	return &CompletionResponse{Text: text, Model: "offline"}, nil
}

// GenerateImage returns a fixed 1x1 transparent PNG.
func (o *OfflineClient) GenerateImage(_ context.Context, req ImageRequest) (*ImageResponse, error) {
	return &ImageResponse{
		Text:     "[offline] No image backend is configured.",
		Image:    transparentPixelPNG,
		MIMEType: "image/png",
	}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// transparentPixelPNG is a minimal valid 1x1 transparent PNG.
var transparentPixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}
