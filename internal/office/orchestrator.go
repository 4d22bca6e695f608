package office

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/officedhq/officed/internal/domain"
)

// Attachment is an optional user-supplied file persisted during the
// execution phase. Loss is non-fatal.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// brainstormPlan is the structured shape the lead coordinator is asked
// to produce during brainstorming.
type brainstormPlan struct {
	Strategy     string   `json:"strategy"`
	Participants []string `json:"participants"`
	Handoff      string   `json:"handoff"`
}

// StartWorkflow runs one full workflow for a thread: brainstorming,
// management assignment, collaboration, execution, reporting. Exactly
// one workflow may run per thread; re-entrant starts are rejected, not
// queued. The terminal step always returns the thread to idle, on both
// success and failure.
func (o *Office) StartWorkflow(ctx context.Context, threadID, directive string, attachment *Attachment) (*domain.Report, error) {
	if strings.TrimSpace(directive) == "" {
		return nil, ErrEmptyDirective
	}

	o.mu.Lock()
	if o.running[threadID] {
		o.mu.Unlock()
		return nil, ErrWorkflowRunning
	}
	o.running[threadID] = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.running, threadID)
		o.mu.Unlock()
		o.setPhase(threadID, domain.PhaseIdle)
	}()

	report, err := o.runWorkflow(ctx, threadID, directive, attachment)
	if err != nil {
		o.log.Error().Err(err).Str("thread", threadID).Msg("workflow failed")
		return nil, fmt.Errorf("workflow failed: %w", err)
	}

	o.publish(Event{Type: EventWorkflowCompleted, ThreadID: threadID, Payload: report})
	o.log.Info().Str("thread", threadID).Str("report", report.ID).Msg("workflow complete")
	return report, nil
}

func (o *Office) runWorkflow(ctx context.Context, threadID, directive string, attachment *Attachment) (*domain.Report, error) {
	sessionID := uuid.New().String()

	thread, err := o.threads.Get(threadID)
	if err != nil {
		thread = nil // workflow runs even when the thread record is missing
	}

	coordinators := o.roster.Coordinators()
	if len(coordinators) == 0 {
		return nil, fmt.Errorf("roster has no coordinator")
	}
	lead := coordinators[0]
	second := lead
	if len(coordinators) > 1 {
		second = coordinators[1]
	}

	// brainstorming: the lead coordinator drafts a structured plan.
	o.setPhase(threadID, domain.PhaseBrainstorming)

	raw, err := o.generate(ctx, lead.ID, brainstormInput(directive, thread))
	if err != nil {
		return nil, fmt.Errorf("brainstorming: %w", err)
	}

	plan, parsed := parseBrainstorm(raw)
	if !parsed {
		// A parse failure never aborts the run: the raw text becomes the
		// strategy and the default team collaborates.
		o.log.Warn().Str("thread", threadID).Msg("brainstorm response did not parse, using raw text")
		plan = brainstormPlan{Strategy: raw}
	}

	participants := o.roster.FilterKnown(plan.Participants)
	if len(participants) == 0 {
		participants = o.roster.DefaultTeam()
	}

	o.recordTurn(domain.MeetingTurn{
		ThreadID:  threadID,
		SessionID: sessionID,
		Room:      "management",
		SpeakerID: lead.ID,
		Text:      plan.Strategy,
		Source:    domain.TurnSourceWorkflow,
	})

	// Two sequential management generations: priority assignment, then
	// a schedule conditioned on the priorities.
	priorities, err := o.generate(ctx, lead.ID, priorityInput(directive, plan.Strategy))
	if err != nil {
		return nil, fmt.Errorf("priority assignment: %w", err)
	}
	o.recordTurn(domain.MeetingTurn{
		ThreadID:  threadID,
		SessionID: sessionID,
		Room:      "management",
		SpeakerID: lead.ID,
		Text:      priorities,
		Source:    domain.TurnSourceWorkflow,
	})
	o.upsertPlan(threadID, lead.ID, priorities, domain.PlanSourceManagement)

	schedule, err := o.generate(ctx, second.ID, scheduleInput(directive, plan.Strategy, priorities))
	if err != nil {
		return nil, fmt.Errorf("schedule plan: %w", err)
	}
	o.recordTurn(domain.MeetingTurn{
		ThreadID:  threadID,
		SessionID: sessionID,
		Room:      "management",
		SpeakerID: second.ID,
		Text:      schedule,
		Source:    domain.TurnSourceWorkflow,
	})
	o.upsertPlan(threadID, second.ID, schedule, domain.PlanSourceManagement)

	managementContext := lead.ID + ": " + priorities + "\n\n" + second.ID + ": " + schedule + "\n\n"

	// collaboration: one sequential, accumulating round of notes.
	o.setPhase(threadID, domain.PhaseCollaboration)
	dialogue := o.runSession(ctx, session{
		threadID:          threadID,
		sessionID:         sessionID,
		task:              directive,
		strategy:          plan.Strategy,
		managementContext: managementContext,
		participants:      participants,
	})

	// execution: best-effort attachment persist.
	o.setPhase(threadID, domain.PhaseExecution)
	if attachment != nil {
		o.putBlob(threadID, attachment.Data, attachment.ContentType, "attachment")
	}

	// reporting: director-facing final report plus auxiliary artifacts.
	o.setPhase(threadID, domain.PhaseReporting)

	director, ok := o.roster.Director()
	if !ok {
		return nil, fmt.Errorf("roster has no director")
	}
	plans, err := o.plans.List(threadID)
	if err != nil {
		plans = nil
	}
	body, err := o.generate(ctx, director.ID, reportInput(directive, plan.Strategy, dialogue, plans))
	if err != nil {
		return nil, fmt.Errorf("final report: %w", err)
	}

	report := domain.Report{
		ThreadID:      threadID,
		Task:          directive,
		Body:          body,
		BodyRef:       o.putBlob(threadID, []byte(body), "text/markdown", "report body"),
		TranscriptRef: o.putBlob(threadID, []byte(dialogue), "text/plain", "transcript"),
	}

	saved, err := o.feed.SaveReport(report)
	if err != nil {
		return nil, fmt.Errorf("persisting report: %w", err)
	}

	if _, err := o.feed.AppendMessage(domain.ChatMessage{
		ThreadID: threadID,
		SenderID: lead.ID,
		Body:     fmt.Sprintf("@%s the final report for %q is ready.", director.ID, firstLine(directive)),
	}); err != nil {
		o.log.Warn().Err(err).Str("thread", threadID).Msg("failed to persist director notification")
	}

	// One governance pass over the completed run.
	o.watcher.Audit(ctx, threadID)

	return saved, nil
}

// putBlob stores an artifact best-effort and returns its ref, or the
// empty string on failure. Artifact loss never fails the run.
func (o *Office) putBlob(threadID string, data []byte, contentType, kind string) string {
	if o.blobs == nil || len(data) == 0 {
		return ""
	}
	ref, err := o.blobs.Put(data, contentType)
	if err != nil {
		o.log.Warn().Err(err).Str("thread", threadID).Str("kind", kind).Msg("failed to persist artifact")
		return ""
	}
	return ref.String()
}

// parseBrainstorm extracts the structured plan from a response that may
// wrap the JSON object in prose or fencing.
func parseBrainstorm(text string) (brainstormPlan, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return brainstormPlan{}, false
	}
	var p brainstormPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return brainstormPlan{}, false
	}
	if p.Strategy == "" {
		return brainstormPlan{}, false
	}
	return p, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
