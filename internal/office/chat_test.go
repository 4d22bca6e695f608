package office

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/llm"
)

func TestSendChat_RejectsEmptyMessage(t *testing.T) {
	f := newFixture(t, echoClient())
	tid := f.newThread(t)

	_, err := f.office.SendChat(context.Background(), tid, "operator", "  ", []string{"engineering"})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendChat_SequentialAccumulatingReplies(t *testing.T) {
	inputs := make(map[int]string)
	var calls int
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			inputs[calls] = req.Input
			return &llm.CompletionResponse{Text: fmt.Sprintf("reply %d", calls)}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	replies, err := f.office.SendChat(context.Background(), tid, "operator", "what is the status?", []string{"engineering", "design"})
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "engineering", replies[0].SenderID)
	assert.Equal(t, "design", replies[1].SenderID)

	// The first reply sees only the triggering message; the second sees
	// the first reply too.
	assert.Contains(t, inputs[1], "operator: what is the status?")
	assert.NotContains(t, inputs[1], "reply 1")
	assert.Contains(t, inputs[2], "engineering: reply 1")
}

func TestSendChat_RecordsChatSourcedTurns(t *testing.T) {
	f := newFixture(t, echoClient())
	tid := f.newThread(t)

	_, err := f.office.SendChat(context.Background(), tid, "operator", "quick sync", []string{"engineering", "design"})
	require.NoError(t, err)

	turns, err := f.feed.RecentTurns(tid, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	for _, turn := range turns {
		assert.Equal(t, domain.TurnSourceChat, turn.Source)
		assert.Equal(t, "chat", turn.Room)
	}
	// Both replies belong to the same batch.
	assert.Equal(t, turns[0].SessionID, turns[1].SessionID)
	assert.NotEmpty(t, turns[0].SessionID)
}

func TestSendChat_UpsertsManualPlans(t *testing.T) {
	f := newFixture(t, echoClient())
	tid := f.newThread(t)

	_, err := f.office.SendChat(context.Background(), tid, "operator", "please revise the budget", []string{"finance"})
	require.NoError(t, err)

	plan, err := f.plans.Get(tid, "finance")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanSourceManual, plan.Source)
}

func TestSendChat_ChatReplyOverwritesWorkflowPlan(t *testing.T) {
	f := newFixture(t, echoClient())
	tid := f.newThread(t)

	_, err := f.plans.Upsert(tid, "finance", "workflow plan", domain.PlanSourceWorkflow)
	require.NoError(t, err)

	_, err = f.office.SendChat(context.Background(), tid, "operator", "new direction", []string{"finance"})
	require.NoError(t, err)

	// Same slot, last writer wins.
	all, err := f.plans.List(tid)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.PlanSourceManual, all[0].Source)
}

func TestSendChat_UnknownTargetsAreSkipped(t *testing.T) {
	f := newFixture(t, echoClient())
	tid := f.newThread(t)

	replies, err := f.office.SendChat(context.Background(), tid, "operator", "hello", []string{"ghost", "engineering"})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "engineering", replies[0].SenderID)
}

func TestExecutePlan_RecordsExecutionWithoutAlteringPlan(t *testing.T) {
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Text: "done: shipped it"}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	_, err := f.plans.Upsert(tid, "engineering", "ship the beta", domain.PlanSourceWorkflow)
	require.NoError(t, err)

	summary, err := f.office.ExecutePlan(context.Background(), tid, "engineering")
	require.NoError(t, err)
	assert.Equal(t, "done: shipped it", summary)

	plan, err := f.plans.Get(tid, "engineering")
	require.NoError(t, err)
	assert.Equal(t, "ship the beta", plan.Plan)
	assert.Equal(t, "done: shipped it", plan.Summary)
	assert.False(t, plan.ExecutedAt.IsZero())
}
