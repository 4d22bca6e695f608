package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/llm"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/roster"
)

func testDispatcher(t *testing.T, mock *llm.MockClient) *Dispatcher {
	t.Helper()
	log := logging.Silent()
	ros, err := roster.Load("")
	require.NoError(t, err)

	reg := llm.NewRegistry(log)
	reg.Register("mock", mock)
	reg.SetFallback("mock")

	return New(reg, ros, nil, log)
}

func TestGenerateText_Success(t *testing.T) {
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Text: "a plan"}, nil
		},
	}
	d := testDispatcher(t, mock)

	text, err := d.GenerateText(context.Background(), "engineering", "instr", "input", Options{})
	require.NoError(t, err)
	assert.Equal(t, "a plan", text)
}

func TestGenerateText_WebSearchRetriedOnceWithoutAugmentation(t *testing.T) {
	var calls []bool
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls = append(calls, req.WebSearch)
			if req.WebSearch {
				return nil, errors.New("search tool unavailable")
			}
			return &llm.CompletionResponse{Text: "plain answer"}, nil
		},
	}
	d := testDispatcher(t, mock)

	text, err := d.GenerateText(context.Background(), "engineering", "", "input", Options{WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, "plain answer", text)
	// Exactly one retry, with augmentation removed.
	assert.Equal(t, []bool{true, false}, calls)
}

func TestGenerateText_AugmentedRetryFailureSurfaces(t *testing.T) {
	var count int
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			count++
			return nil, errors.New("backend down")
		},
	}
	d := testDispatcher(t, mock)

	_, err := d.GenerateText(context.Background(), "engineering", "", "input", Options{WebSearch: true})
	assert.Error(t, err)
	assert.Equal(t, 2, count)
}

func TestGenerateText_NonAugmentedFailureNeverRetried(t *testing.T) {
	var count int
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			count++
			return nil, errors.New("backend down")
		},
	}
	d := testDispatcher(t, mock)

	_, err := d.GenerateText(context.Background(), "engineering", "", "input", Options{})
	assert.Error(t, err)
	assert.Equal(t, 1, count)
}

func TestGenerateText_EmptyResponseIsTypedFailure(t *testing.T) {
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Text: ""}, nil
		},
	}
	d := testDispatcher(t, mock)

	_, err := d.GenerateText(context.Background(), "engineering", "", "input", Options{})
	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "mock", perr.Provider)
}

func TestGenerateText_UnknownAgent(t *testing.T) {
	d := testDispatcher(t, &llm.MockClient{ProviderName: "mock"})

	_, err := d.GenerateText(context.Background(), "ghost", "", "input", Options{})
	assert.Error(t, err)
}

func TestGenerateText_MissingCredentialIsTypedFailure(t *testing.T) {
	log := logging.Silent()
	ros, err := roster.Load("")
	require.NoError(t, err)

	// Empty registry, no fallback: no backend has a credential.
	d := New(llm.NewRegistry(log), ros, nil, log)

	_, err = d.GenerateText(context.Background(), "engineering", "", "input", Options{})
	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 401, perr.Code)
}

func TestRuntimeConfigs_OverrideResolution(t *testing.T) {
	var gotModel string
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			gotModel = req.Model
			return &llm.CompletionResponse{Text: "ok"}, nil
		},
	}
	d := testDispatcher(t, mock)

	d.Configs().Set(domain.RuntimeConfig{AgentID: "engineering", Model: "custom-model"})
	_, err := d.GenerateText(context.Background(), "engineering", "", "input", Options{})
	require.NoError(t, err)
	assert.Equal(t, "custom-model", gotModel)

	// Clearing restores the roster default.
	d.Configs().Clear("engineering")
	_, err = d.GenerateText(context.Background(), "engineering", "", "input", Options{})
	require.NoError(t, err)
	assert.NotEqual(t, "custom-model", gotModel)
}

func TestGenerateImage_Validation(t *testing.T) {
	d := testDispatcher(t, &llm.MockClient{ProviderName: "mock"})

	refs := make([]llm.ImageReference, 15)
	_, err := d.GenerateImage(context.Background(), llm.ImageRequest{Prompt: "x", References: refs})
	assert.Error(t, err)

	_, err = d.GenerateImage(context.Background(), llm.ImageRequest{Prompt: "x", Resolution: "8K"})
	assert.Error(t, err)

	resp, err := d.GenerateImage(context.Background(), llm.ImageRequest{Prompt: "x", Resolution: "2K"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Image)
}
