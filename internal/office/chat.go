package office

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/officedhq/officed/internal/domain"
)

// SendChat delivers an out-of-band message to one or more agents. Each
// target replies sequentially in caller order, conditioned on an
// accumulating dialogue seeded only with the triggering message; each
// reply also lands in the meeting record as a chat-sourced turn and
// updates that agent's plan slot. One governance pass is scheduled at
// the end of the batch.
func (o *Office) SendChat(ctx context.Context, threadID, senderID, body string, targets []string) ([]domain.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := o.feed.AppendMessage(domain.ChatMessage{
		ThreadID: threadID,
		SenderID: senderID,
		Body:     body,
	}); err != nil {
		o.log.Warn().Err(err).Str("thread", threadID).Msg("failed to persist chat message")
	}

	prior := senderID + ": " + body + "\n\n"
	sessionID := uuid.New().String()

	var replies []domain.ChatMessage
	for _, target := range targets {
		if _, ok := o.roster.Get(target); !ok {
			o.log.Warn().Str("thread", threadID).Str("target", target).Msg("chat target not in roster, skipped")
			continue
		}

		reply, err := o.generate(ctx, target, chatInput(body, prior))
		if err != nil {
			o.log.Warn().Err(err).Str("thread", threadID).Str("target", target).
				Msg("chat reply failed, substituting notice")
			reply = failureNotice
		}

		prior += target + ": " + reply + "\n\n"

		msg := domain.ChatMessage{ThreadID: threadID, SenderID: target, Body: reply}
		saved, err := o.feed.AppendMessage(msg)
		if err != nil {
			o.log.Warn().Err(err).Str("thread", threadID).Str("target", target).
				Msg("failed to persist chat reply")
			saved = &msg
		}
		replies = append(replies, *saved)

		o.recordTurn(domain.MeetingTurn{
			ThreadID:  threadID,
			SessionID: sessionID,
			Room:      "chat",
			SpeakerID: target,
			Text:      reply,
			Source:    domain.TurnSourceChat,
		})
		o.upsertPlan(threadID, target, reply, domain.PlanSourceManual)
	}

	o.watcher.Trigger(threadID)
	return replies, nil
}
