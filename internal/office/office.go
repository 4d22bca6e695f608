// Package office is the workflow orchestration core: the phase state
// machine, the collaboration session runner, the out-of-band chat batch,
// and the governance watcher.
package office

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/officedhq/officed/internal/blob"
	"github.com/officedhq/officed/internal/dispatch"
	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/roster"
	"github.com/officedhq/officed/internal/store"
)

// Input validation sentinels. Rejected synchronously, no side effects.
var (
	ErrEmptyDirective  = errors.New("directive is empty")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrWorkflowRunning = errors.New("a workflow is already running for this thread")
)

// Event types broadcast to sinks.
const (
	EventPhaseChanged      = "phase.changed"
	EventMeetingTurn       = "meeting.turn"
	EventGovernanceAlert   = "governance.alert"
	EventWorkflowCompleted = "workflow.completed"
)

// Event is one observable state change, fanned out to all sinks.
type Event struct {
	Type     string `json:"type"`
	ThreadID string `json:"threadId"`
	Payload  any    `json:"payload,omitempty"`
}

// Sink receives events. Publish must not block; slow consumers drop.
type Sink interface {
	Publish(Event)
}

// Options tune generation calls issued by the orchestrator.
type Options struct {
	MaxTokens   int
	Temperature *float64
}

// Office wires the orchestration core to its collaborators.
type Office struct {
	roster     *roster.Roster
	dispatcher *dispatch.Dispatcher
	threads    store.Threads
	plans      store.Plans
	feed       store.Feed
	blobs      *blob.Store // optional; nil disables attachments
	watcher    *Watcher
	opts       Options
	log        *logging.Logger

	mu      sync.Mutex
	phases  map[string]domain.Phase
	running map[string]bool
	sinks   []Sink
}

// New creates an Office. The watcher is constructed alongside and shares
// the office's sinks and running-state probe.
func New(ros *roster.Roster, d *dispatch.Dispatcher, threads store.Threads, plans store.Plans, feed store.Feed, blobs *blob.Store, watcherCfg WatcherConfig, opts Options, log *logging.Logger) *Office {
	o := &Office{
		roster:     ros,
		dispatcher: d,
		threads:    threads,
		plans:      plans,
		feed:       feed,
		blobs:      blobs,
		opts:       opts,
		log:        log.Sub("office"),
		phases:     make(map[string]domain.Phase),
		running:    make(map[string]bool),
	}
	o.watcher = NewWatcher(d, ros, feed, watcherCfg, o.WorkflowRunning, o.publish, log)
	return o
}

// Subscribe adds an event sink.
func (o *Office) Subscribe(s Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, s)
}

// Watcher returns the governance watcher.
func (o *Office) Watcher() *Watcher { return o.watcher }

// Offline reports whether generation runs against the canned offline
// provider.
func (o *Office) Offline() bool { return o.dispatcher.Offline() }

// Phase returns the current phase for a thread.
func (o *Office) Phase(threadID string) domain.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.phases[threadID]; ok {
		return p
	}
	return domain.PhaseIdle
}

// WorkflowRunning reports whether a workflow run is in progress on the
// thread.
func (o *Office) WorkflowRunning(threadID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running[threadID]
}

func (o *Office) setPhase(threadID string, p domain.Phase) {
	o.mu.Lock()
	if p == domain.PhaseIdle {
		delete(o.phases, threadID)
	} else {
		o.phases[threadID] = p
	}
	o.mu.Unlock()

	o.publish(Event{Type: EventPhaseChanged, ThreadID: threadID, Payload: map[string]string{"phase": string(p)}})
}

func (o *Office) publish(ev Event) {
	o.mu.Lock()
	sinks := append([]Sink(nil), o.sinks...)
	o.mu.Unlock()
	for _, s := range sinks {
		s.Publish(ev)
	}
}

// recordTurn persists a meeting turn and broadcasts it. Persistence
// failure is logged and swallowed; the returned turn always carries the
// text the caller supplied.
func (o *Office) recordTurn(turn domain.MeetingTurn) domain.MeetingTurn {
	saved, err := o.feed.AppendTurn(turn)
	if err != nil {
		o.log.Warn().Err(err).Str("thread", turn.ThreadID).Str("speaker", turn.SpeakerID).
			Msg("failed to persist meeting turn")
		saved = &turn
	}
	o.publish(Event{Type: EventMeetingTurn, ThreadID: turn.ThreadID, Payload: saved})
	return *saved
}

// upsertPlan updates an agent's plan slot. Persistence failure is
// logged and swallowed.
func (o *Office) upsertPlan(threadID, memberID, plan, source string) {
	if _, err := o.plans.Upsert(threadID, memberID, plan, source); err != nil {
		o.log.Warn().Err(err).Str("thread", threadID).Str("member", memberID).
			Msg("failed to upsert plan")
	}
}

// generate issues one completion on behalf of an agent with the
// office-wide generation options.
func (o *Office) generate(ctx context.Context, agentID, input string) (string, error) {
	agent, ok := o.roster.Get(agentID)
	if !ok {
		return "", fmt.Errorf("unknown agent %q", agentID)
	}
	return o.dispatcher.GenerateText(ctx, agentID, agent.Identity, input, dispatch.Options{
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
	})
}
