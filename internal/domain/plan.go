package domain

import "time"

// Plan sources. A plan slot keeps whichever source wrote it last.
const (
	PlanSourceWorkflow   = "workflow"
	PlanSourceManagement = "management"
	PlanSourceManual     = "manual"
)

// ActionPlan is the single current delegated-work record for one agent
// within one thread. (ThreadID, MemberID) is soft-unique: new content
// from any source overwrites in place, it never appends.
type ActionPlan struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"threadId"`
	MemberID   string    `json:"memberId"`
	Plan       string    `json:"plan"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ExecutedAt time.Time `json:"executedAt,omitempty"`
	Summary    string    `json:"summary,omitempty"` // last execution summary
}
