package domain

import "time"

// Governance checker identities.
const (
	AlertSourceLegal = "legal-checker"
	AlertSourceHR    = "hr-checker"
)

// Alert statuses.
const (
	AlertStatusOK      = "ok"
	AlertStatusWarning = "warning"
)

// GovernanceAlert is one audit result. Append-only.
type GovernanceAlert struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
