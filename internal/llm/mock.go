package llm

import "context"

// MockClient is a test double for Client and ImageClient.
type MockClient struct {
	ProviderName      string
	CompleteFunc      func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	GenerateImageFunc func(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Text: "mock response"}, nil
}

func (m *MockClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, req)
	}
	return &ImageResponse{Text: "mock image", Image: transparentPixelPNG, MIMEType: "image/png"}, nil
}
