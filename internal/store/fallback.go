package store

import (
	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/logging"
)

// FallbackPlans wraps a primary plan registry and degrades to an
// in-memory buffer when the primary errors. Writes never surface a
// storage failure to the workflow. The buffer only ever holds keys
// whose most recent write degraded: a successful primary write clears
// the buffered slot, so reads always see the latest upserted text.
type FallbackPlans struct {
	primary Plans
	buffer  *MemoryPlans
	log     *logging.Logger
}

// NewFallbackPlans wraps primary with an in-memory fallback.
func NewFallbackPlans(primary Plans, log *logging.Logger) *FallbackPlans {
	return &FallbackPlans{
		primary: primary,
		buffer:  NewMemoryPlans(),
		log:     log.Sub("store.fallback"),
	}
}

func (f *FallbackPlans) Upsert(threadID, memberID, plan, source string) (*domain.ActionPlan, error) {
	p, err := f.primary.Upsert(threadID, memberID, plan, source)
	if err == nil {
		// A recovered primary owns the key again; drop any stale
		// buffered slot so it cannot shadow this write.
		f.buffer.Delete(threadID, memberID)
		return p, nil
	}
	f.log.Warn().Err(err).Str("thread", threadID).Str("member", memberID).
		Msg("plan write degraded to memory buffer")
	return f.buffer.Upsert(threadID, memberID, plan, source)
}

func (f *FallbackPlans) Get(threadID, memberID string) (*domain.ActionPlan, error) {
	if p, err := f.buffer.Get(threadID, memberID); err == nil {
		return p, nil
	}
	return f.primary.Get(threadID, memberID)
}

func (f *FallbackPlans) List(threadID string) ([]domain.ActionPlan, error) {
	primary, err := f.primary.List(threadID)
	if err != nil {
		return f.buffer.List(threadID)
	}
	buffered, _ := f.buffer.List(threadID)
	if len(buffered) == 0 {
		return primary, nil
	}
	// Buffered slots shadow their primary counterparts.
	shadow := make(map[string]bool, len(buffered))
	for _, p := range buffered {
		shadow[p.MemberID] = true
	}
	var out []domain.ActionPlan
	for _, p := range primary {
		if !shadow[p.MemberID] {
			out = append(out, p)
		}
	}
	return append(out, buffered...), nil
}

func (f *FallbackPlans) MarkExecuted(planID, summary string) error {
	if err := f.primary.MarkExecuted(planID, summary); err == nil {
		return nil
	}
	return f.buffer.MarkExecuted(planID, summary)
}

// FallbackFeed wraps a primary feed and degrades appends to an
// in-memory buffer when the primary errors.
type FallbackFeed struct {
	primary Feed
	buffer  *MemoryFeed
	log     *logging.Logger
}

// NewFallbackFeed wraps primary with an in-memory fallback.
func NewFallbackFeed(primary Feed, log *logging.Logger) *FallbackFeed {
	return &FallbackFeed{
		primary: primary,
		buffer:  NewMemoryFeed(),
		log:     log.Sub("store.fallback"),
	}
}

func (f *FallbackFeed) AppendMessage(msg domain.ChatMessage) (*domain.ChatMessage, error) {
	m, err := f.primary.AppendMessage(msg)
	if err == nil {
		return m, nil
	}
	f.log.Warn().Err(err).Msg("message write degraded to memory buffer")
	return f.buffer.AppendMessage(msg)
}

func (f *FallbackFeed) RecentMessages(threadID string, n int) ([]domain.ChatMessage, error) {
	primary, err := f.primary.RecentMessages(threadID, n)
	if err != nil {
		return f.buffer.RecentMessages(threadID, n)
	}
	buffered, _ := f.buffer.RecentMessages(threadID, n)
	return mergeTail(primary, buffered, n), nil
}

func (f *FallbackFeed) AppendTurn(turn domain.MeetingTurn) (*domain.MeetingTurn, error) {
	t, err := f.primary.AppendTurn(turn)
	if err == nil {
		return t, nil
	}
	f.log.Warn().Err(err).Msg("turn write degraded to memory buffer")
	return f.buffer.AppendTurn(turn)
}

func (f *FallbackFeed) RecentTurns(threadID string, n int) ([]domain.MeetingTurn, error) {
	primary, err := f.primary.RecentTurns(threadID, n)
	if err != nil {
		return f.buffer.RecentTurns(threadID, n)
	}
	buffered, _ := f.buffer.RecentTurns(threadID, n)
	return mergeTail(primary, buffered, n), nil
}

func (f *FallbackFeed) SessionTurns(sessionID string) ([]domain.MeetingTurn, error) {
	primary, err := f.primary.SessionTurns(sessionID)
	if err != nil {
		return f.buffer.SessionTurns(sessionID)
	}
	buffered, _ := f.buffer.SessionTurns(sessionID)
	return append(primary, buffered...), nil
}

func (f *FallbackFeed) AppendAlert(alert domain.GovernanceAlert) (*domain.GovernanceAlert, error) {
	a, err := f.primary.AppendAlert(alert)
	if err == nil {
		return a, nil
	}
	f.log.Warn().Err(err).Msg("alert write degraded to memory buffer")
	return f.buffer.AppendAlert(alert)
}

func (f *FallbackFeed) ListAlerts(threadID string) ([]domain.GovernanceAlert, error) {
	primary, err := f.primary.ListAlerts(threadID)
	if err != nil {
		return f.buffer.ListAlerts(threadID)
	}
	buffered, _ := f.buffer.ListAlerts(threadID)
	return append(primary, buffered...), nil
}

func (f *FallbackFeed) SaveReport(report domain.Report) (*domain.Report, error) {
	r, err := f.primary.SaveReport(report)
	if err == nil {
		return r, nil
	}
	f.log.Warn().Err(err).Msg("report write degraded to memory buffer")
	return f.buffer.SaveReport(report)
}

func (f *FallbackFeed) ListReports(threadID string) ([]domain.Report, error) {
	primary, err := f.primary.ListReports(threadID)
	if err != nil {
		return f.buffer.ListReports(threadID)
	}
	buffered, _ := f.buffer.ListReports(threadID)
	return append(primary, buffered...), nil
}

// mergeTail concatenates primary then buffered records and keeps the
// newest n.
func mergeTail[T any](primary, buffered []T, n int) []T {
	out := append(append([]T(nil), primary...), buffered...)
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
