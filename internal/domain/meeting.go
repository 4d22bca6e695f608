package domain

import "time"

// Meeting turn sources.
const (
	TurnSourceWorkflow = "workflow"
	TurnSourceChat     = "chat"
)

// MeetingTurn is one utterance in a brainstorming or collaboration
// session. Append-only, immutable once created.
type MeetingTurn struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	SessionID string    `json:"sessionId"`
	Room      string    `json:"room,omitempty"`
	SpeakerID string    `json:"speakerId"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
