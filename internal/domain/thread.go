package domain

import "time"

// Thread is an isolated workspace. Every other record is partitioned by
// thread id. Threads are never hard-deleted here.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Vision    string    `json:"vision,omitempty"`
	Goals     []string  `json:"goals,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMessage is one out-of-band message in a thread.
type ChatMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is a persisted final deliverable for one workflow run.
type Report struct {
	ID            string    `json:"id"`
	ThreadID      string    `json:"threadId"`
	Task          string    `json:"task"`
	Body          string    `json:"body"`
	BodyRef       string    `json:"bodyRef,omitempty"`       // attachment ref, best-effort
	TranscriptRef string    `json:"transcriptRef,omitempty"` // attachment ref, best-effort
	CreatedAt     time.Time `json:"createdAt"`
}
