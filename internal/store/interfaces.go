package store

import "github.com/officedhq/officed/internal/domain"

// Threads manages workspace records. Threads are never hard-deleted.
type Threads interface {
	Create(title, vision string, goals []string) (*domain.Thread, error)
	Get(id string) (*domain.Thread, error)
	List() ([]domain.Thread, error)
	Update(id, title, vision string, goals []string) (*domain.Thread, error)
}

// Plans is the per-role plan registry. (ThreadID, MemberID) is
// soft-unique: Upsert overwrites in place, last writer wins.
type Plans interface {
	Upsert(threadID, memberID, plan, source string) (*domain.ActionPlan, error)
	Get(threadID, memberID string) (*domain.ActionPlan, error)
	List(threadID string) ([]domain.ActionPlan, error)
	MarkExecuted(planID, summary string) error
}

// Feed holds the append-only per-thread collections: chat messages,
// meeting turns, governance alerts, and reports.
type Feed interface {
	AppendMessage(msg domain.ChatMessage) (*domain.ChatMessage, error)
	RecentMessages(threadID string, n int) ([]domain.ChatMessage, error)

	AppendTurn(turn domain.MeetingTurn) (*domain.MeetingTurn, error)
	RecentTurns(threadID string, n int) ([]domain.MeetingTurn, error)
	SessionTurns(sessionID string) ([]domain.MeetingTurn, error)

	AppendAlert(alert domain.GovernanceAlert) (*domain.GovernanceAlert, error)
	ListAlerts(threadID string) ([]domain.GovernanceAlert, error)

	SaveReport(report domain.Report) (*domain.Report, error)
	ListReports(threadID string) ([]domain.Report, error)
}
