package office

import (
	"context"

	"github.com/officedhq/officed/internal/domain"
)

// failureNotice substitutes for an agent's note when its generation call
// fails. The session continues; the substitute participates in later
// turns' prior dialogue like any other note.
const failureNotice = "(no contribution — the generation call for this turn failed)"

// session carries one collaboration round's fixed inputs.
type session struct {
	threadID  string
	sessionID string
	task      string
	strategy  string
	// managementContext seeds the prior-dialogue block.
	managementContext string
	participants      []string
}

// runSession drives one sequential, context-accumulating round of
// per-agent notes. Participants speak in the order supplied; each turn's
// input embeds every prior turn's text, so a turn never starts before
// the previous one is finalized. Returns the accumulated dialogue block.
func (o *Office) runSession(ctx context.Context, s session) string {
	prior := s.managementContext

	for _, pid := range s.participants {
		input := collabInput(s.task, s.strategy, s.managementContext, prior)
		note, err := o.generate(ctx, pid, input)
		if err != nil {
			o.log.Warn().Err(err).Str("thread", s.threadID).Str("speaker", pid).
				Msg("collaboration turn failed, substituting notice")
			note = failureNotice
		}

		prior += pid + ": " + note + "\n\n"

		o.recordTurn(domain.MeetingTurn{
			ThreadID:  s.threadID,
			SessionID: s.sessionID,
			Room:      "collaboration",
			SpeakerID: pid,
			Text:      note,
			Source:    domain.TurnSourceWorkflow,
		})
		o.upsertPlan(s.threadID, pid, note, domain.PlanSourceWorkflow)
	}

	return prior
}
