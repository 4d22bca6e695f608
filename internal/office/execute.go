package office

import (
	"context"
	"fmt"

	"github.com/officedhq/officed/internal/domain"
)

// ExecutePlan runs an agent's current plan out-of-band: the agent is
// asked to carry the plan out and report, and the execution event is
// recorded on the plan without altering its text.
func (o *Office) ExecutePlan(ctx context.Context, threadID, memberID string) (string, error) {
	plan, err := o.plans.Get(threadID, memberID)
	if err != nil {
		return "", fmt.Errorf("looking up plan: %w", err)
	}

	input := plan.Plan + "\n\nCarry out this plan now and report back: what you did, what is blocked, and what comes next."
	summary, err := o.generate(ctx, memberID, input)
	if err != nil {
		return "", fmt.Errorf("executing plan: %w", err)
	}

	if err := o.plans.MarkExecuted(plan.ID, summary); err != nil {
		o.log.Warn().Err(err).Str("plan", plan.ID).Msg("failed to record execution")
	}

	if _, err := o.feed.AppendMessage(domain.ChatMessage{
		ThreadID: threadID,
		SenderID: memberID,
		Body:     summary,
	}); err != nil {
		o.log.Warn().Err(err).Str("thread", threadID).Msg("failed to persist execution summary")
	}

	o.watcher.Trigger(threadID)
	return summary, nil
}
