package office

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedhq/officed/internal/blob"
	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/dispatch"
	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/llm"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/roster"
	"github.com/officedhq/officed/internal/store"
)

// fixture bundles an Office wired to memory stores and a single mock
// provider serving every backend tag.
type fixture struct {
	office  *Office
	threads store.Threads
	plans   store.Plans
	feed    store.Feed
	ros     *roster.Roster
}

func logSilent() *logging.Logger {
	return logging.Silent()
}

func testWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Cooldown:       0,
		DebounceActive: 0,
		DebounceIdle:   0,
		RecentMessages: 4,
		RecentTurns:    6,
	}
}

func newFixture(t *testing.T, mock llm.Client) *fixture {
	t.Helper()
	log := logging.Silent()
	ros, err := roster.Load("")
	require.NoError(t, err)

	var reg *llm.Registry
	if mock != nil {
		reg = llm.NewRegistry(log)
		reg.Register("mock", mock)
		reg.SetFallback("mock")
	} else {
		reg = llm.NewRegistryFromConfig(config.BackendsConfig{}, log)
	}
	d := dispatch.New(reg, ros, nil, log)

	f := &fixture{
		threads: store.NewMemoryThreads(),
		plans:   store.NewMemoryPlans(),
		feed:    store.NewMemoryFeed(),
		ros:     ros,
	}
	f.office = New(ros, d, f.threads, f.plans, f.feed, nil, testWatcherConfig(), Options{}, log)
	return f
}

func (f *fixture) newThread(t *testing.T) string {
	t.Helper()
	thread, err := f.threads.Create("test thread", "", nil)
	require.NoError(t, err)
	return thread.ID
}

// echoClient answers every call with a speaker-independent canned note.
func echoClient() *llm.MockClient {
	return &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Text: "note"}, nil
		},
	}
}

// --- Input validation ---

func TestStartWorkflow_RejectsEmptyDirective(t *testing.T) {
	f := newFixture(t, echoClient())
	tid := f.newThread(t)

	_, err := f.office.StartWorkflow(context.Background(), tid, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyDirective)

	// No side effects.
	turns, _ := f.feed.RecentTurns(tid, 10)
	assert.Empty(t, turns)
}

func TestStartWorkflow_RejectsReentrantStart(t *testing.T) {
	release := make(chan struct{})
	blocking := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			<-release
			return &llm.CompletionResponse{Text: "note"}, nil
		},
	}
	f := newFixture(t, blocking)
	tid := f.newThread(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.office.StartWorkflow(context.Background(), tid, "first run", nil)
	}()

	require.Eventually(t, func() bool {
		return f.office.WorkflowRunning(tid)
	}, time.Second, time.Millisecond)

	_, err := f.office.StartWorkflow(context.Background(), tid, "second run", nil)
	assert.ErrorIs(t, err, ErrWorkflowRunning)
	assert.True(t, f.office.WorkflowRunning(tid), "in-progress state must be untouched")

	close(release)
	wg.Wait()
	assert.False(t, f.office.WorkflowRunning(tid))
	assert.Equal(t, domain.PhaseIdle, f.office.Phase(tid))
}

// --- Offline fallback determinism ---

func TestStartWorkflow_OfflineModeCompletesAllPhases(t *testing.T) {
	f := newFixture(t, nil) // no credentials: offline registry
	tid := f.newThread(t)

	var mu sync.Mutex
	var phases []string
	f.office.Subscribe(sinkFunc(func(ev Event) {
		if ev.Type == EventPhaseChanged {
			mu.Lock()
			phases = append(phases, ev.Payload.(map[string]string)["phase"])
			mu.Unlock()
		}
	}))

	report, err := f.office.StartWorkflow(context.Background(), tid, "Launch a beta", nil)
	require.NoError(t, err)

	assert.Contains(t, report.Body, "Launch a beta")
	assert.Contains(t, report.Body, "[offline]")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"brainstorming", "collaboration", "execution", "reporting", "idle"}, phases)

	reports, err := f.feed.ListReports(tid)
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

// --- Brainstorm parsing ---

func TestStartWorkflow_ParsedParticipantsAreUsed(t *testing.T) {
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			if strings.Contains(req.Input, "JSON object") {
				return &llm.CompletionResponse{
					Text: `{"strategy": "focus on engineering", "participants": ["engineering", "design"], "handoff": "go"}`,
				}, nil
			}
			return &llm.CompletionResponse{Text: "note"}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	_, err := f.office.StartWorkflow(context.Background(), tid, "build the thing", nil)
	require.NoError(t, err)

	plans, err := f.plans.List(tid)
	require.NoError(t, err)

	members := make(map[string]string)
	for _, p := range plans {
		members[p.MemberID] = p.Source
	}
	assert.Equal(t, domain.PlanSourceWorkflow, members["engineering"])
	assert.Equal(t, domain.PlanSourceWorkflow, members["design"])
	assert.NotContains(t, members, "marketing", "unlisted agents do not collaborate")
	assert.Equal(t, domain.PlanSourceManagement, members["coo"])
	assert.Equal(t, domain.PlanSourceManagement, members["pmo"])
}

func TestStartWorkflow_ParseFailureFallsBackToDefaultTeam(t *testing.T) {
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Text: "just prose, no structure at all"}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	_, err := f.office.StartWorkflow(context.Background(), tid, "build the thing", nil)
	require.NoError(t, err, "a parse failure never aborts the workflow")

	plans, err := f.plans.List(tid)
	require.NoError(t, err)

	var workflowMembers []string
	for _, p := range plans {
		if p.Source == domain.PlanSourceWorkflow {
			workflowMembers = append(workflowMembers, p.MemberID)
		}
	}
	assert.ElementsMatch(t, f.ros.DefaultTeam(), workflowMembers)
}

// --- Error recovery ---

func TestStartWorkflow_FailureForcesIdleAndNextRunProceeds(t *testing.T) {
	var fail bool
	mock := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			if fail {
				return nil, errors.New("backend exploded")
			}
			return &llm.CompletionResponse{Text: "note"}, nil
		},
	}
	f := newFixture(t, mock)
	tid := f.newThread(t)

	fail = true
	_, err := f.office.StartWorkflow(context.Background(), tid, "doomed run", nil)
	require.Error(t, err)
	assert.Equal(t, domain.PhaseIdle, f.office.Phase(tid))
	assert.False(t, f.office.WorkflowRunning(tid))

	fail = false
	_, err = f.office.StartWorkflow(context.Background(), tid, "clean run", nil)
	assert.NoError(t, err, "a failed run must leave the thread usable")
}

// --- Non-fatal attachment failure ---

func TestStartWorkflow_AttachmentFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, echoClient())

	// A blob store whose directory vanished fails every Put.
	dir := filepath.Join(t.TempDir(), "blobs")
	blobs, err := blob.NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	f.office = New(f.ros, f.office.dispatcher, f.threads, f.plans, f.feed, blobs, testWatcherConfig(), Options{}, logSilent())
	tid := f.newThread(t)

	report, err := f.office.StartWorkflow(context.Background(), tid, "run with attachment", &Attachment{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Data:        []byte("meeting notes"),
	})
	require.NoError(t, err, "attachment loss must not fail the run")
	assert.Empty(t, report.BodyRef)
	assert.Empty(t, report.TranscriptRef)

	reports, err := f.feed.ListReports(tid)
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

// sinkFunc adapts a function to the Sink interface.
type sinkFunc func(Event)

func (f sinkFunc) Publish(ev Event) { f(ev) }
