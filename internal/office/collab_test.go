package office

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/llm"
)

func TestRunSession_SequentialDependency(t *testing.T) {
	inputs := make(map[string]string)
	var order []string
	var calls int
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			speaker := fmt.Sprintf("speaker-%d", calls)
			inputs[speaker] = req.Input
			order = append(order, speaker)
			return &llm.CompletionResponse{Text: "unique note " + speaker}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	f.office.runSession(context.Background(), session{
		threadID:     tid,
		sessionID:    "s1",
		task:         "launch the beta",
		strategy:     "ship fast",
		participants: []string{"engineering", "design", "marketing"},
	})

	require.Len(t, order, 3)
	// The third speaker's input carries the first two notes verbatim.
	third := inputs["speaker-3"]
	assert.Contains(t, third, "unique note speaker-1")
	assert.Contains(t, third, "unique note speaker-2")
	// The first speaker saw no prior notes.
	assert.NotContains(t, inputs["speaker-1"], "unique note")
}

func TestRunSession_FailureSubstituteParticipates(t *testing.T) {
	var calls int
	var lastInput string
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			lastInput = req.Input
			if calls == 1 {
				return nil, errors.New("backend down")
			}
			return &llm.CompletionResponse{Text: "fine"}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	dialogue := f.office.runSession(context.Background(), session{
		threadID:     tid,
		sessionID:    "s1",
		task:         "launch the beta",
		participants: []string{"engineering", "design"},
	})

	// The failed turn is substituted, not skipped: the next speaker sees
	// it, and it lands in the transcript, the turn feed, and the plan.
	assert.Contains(t, lastInput, failureNotice)
	assert.Contains(t, dialogue, "engineering: "+failureNotice)

	turns, err := f.feed.SessionTurns("s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, failureNotice, turns[0].Text)
	assert.Equal(t, domain.TurnSourceWorkflow, turns[0].Source)

	plan, err := f.plans.Get(tid, "engineering")
	require.NoError(t, err)
	assert.Equal(t, failureNotice, plan.Plan)
	assert.Equal(t, domain.PlanSourceWorkflow, plan.Source)
}

func TestRunSession_SeededWithManagementContext(t *testing.T) {
	var firstInput string
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			if firstInput == "" {
				firstInput = req.Input
			}
			return &llm.CompletionResponse{Text: "ok"}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	f.office.runSession(context.Background(), session{
		threadID:          tid,
		sessionID:         "s1",
		task:              "launch",
		managementContext: "coo: priorities first\n\n",
		participants:      []string{"engineering"},
	})

	assert.True(t, strings.Contains(firstInput, "priorities first"))
}
