package office

import (
	"fmt"
	"strings"

	"github.com/officedhq/officed/internal/domain"
)

// Prompt builders. Every input leads with the task text so degraded
// (offline) outputs still carry it through to downstream phases.

func brainstormInput(directive string, thread *domain.Thread) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n\n")
	if thread != nil {
		if thread.Vision != "" {
			fmt.Fprintf(&b, "Workspace vision: %s\n", thread.Vision)
		}
		if len(thread.Goals) > 0 {
			fmt.Fprintf(&b, "Workspace goals: %s\n", strings.Join(thread.Goals, "; "))
		}
		b.WriteString("\n")
	}
	b.WriteString("Draft an execution strategy for this directive. Respond with a JSON object:\n")
	b.WriteString(`{"strategy": "...", "participants": ["agent-id", ...], "handoff": "..."}` + "\n")
	b.WriteString("participants must be agent ids from the team roster.")
	return b.String()
}

func priorityInput(directive, strategy string) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n\nStrategy:\n")
	b.WriteString(strategy)
	b.WriteString("\n\nAssign priorities to the work implied by this strategy: what must happen first, what can wait, and who owns each item.")
	return b.String()
}

func scheduleInput(directive, strategy, priorities string) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n\nStrategy:\n")
	b.WriteString(strategy)
	b.WriteString("\n\nPriority assignment:\n")
	b.WriteString(priorities)
	b.WriteString("\n\nLay out a schedule and dependency plan that respects the priorities above.")
	return b.String()
}

func collabInput(directive, strategy, managementContext, priorDialogue string) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n\nStrategy:\n")
	b.WriteString(strategy)
	if managementContext != "" {
		b.WriteString("\n\nManagement context:\n")
		b.WriteString(managementContext)
	}
	if priorDialogue != "" {
		b.WriteString("\n\nDiscussion so far:\n")
		b.WriteString(priorDialogue)
	}
	b.WriteString("\nAdd your contribution: a concrete note on how your role advances this task, reacting to what has been said so far.")
	return b.String()
}

func reportInput(directive, strategy, dialogue string, plans []domain.ActionPlan) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n\nStrategy:\n")
	b.WriteString(strategy)
	b.WriteString("\n\nCollaboration notes:\n")
	b.WriteString(dialogue)
	if len(plans) > 0 {
		b.WriteString("\nCurrent plans:\n")
		for _, p := range plans {
			fmt.Fprintf(&b, "- %s [%s]: %s\n", p.MemberID, p.Source, p.Plan)
		}
	}
	b.WriteString("\nCompose the final report for the director: outcome, per-role commitments, and open risks.")
	return b.String()
}

func chatInput(body, priorDialogue string) string {
	var b strings.Builder
	b.WriteString(body)
	if priorDialogue != "" {
		b.WriteString("\n\nConversation so far:\n")
		b.WriteString(priorDialogue)
	}
	b.WriteString("\nReply in role, then state what you will do about it as a short action plan.")
	return b.String()
}

func auditInput(concern, snapshot string) string {
	var b strings.Builder
	b.WriteString(snapshot)
	b.WriteString("\n\nReview the recent activity above for ")
	b.WriteString(concern)
	b.WriteString(" concerns. State findings plainly; say 'no concerns' if there are none.")
	return b.String()
}
