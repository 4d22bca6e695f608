package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/officedhq/officed/internal/domain"
)

// MemoryThreads is an in-memory Threads implementation. It serves as
// the degraded mode when SQLite is unavailable and as the test fixture.
type MemoryThreads struct {
	mu      sync.RWMutex
	threads []domain.Thread
}

// NewMemoryThreads creates an empty in-memory thread store.
func NewMemoryThreads() *MemoryThreads {
	return &MemoryThreads{}
}

func (s *MemoryThreads) Create(title, vision string, goals []string) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	t := domain.Thread{
		ID:        uuid.New().String(),
		Title:     title,
		Vision:    vision,
		Goals:     append([]string(nil), goals...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.threads = append(s.threads, t)
	return &t, nil
}

func (s *MemoryThreads) Get(id string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.threads {
		if s.threads[i].ID == id {
			t := s.threads[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("thread not found")
}

func (s *MemoryThreads) List() ([]domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Thread, len(s.threads))
	copy(out, s.threads)
	return out, nil
}

func (s *MemoryThreads) Update(id, title, vision string, goals []string) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.threads {
		if s.threads[i].ID == id {
			s.threads[i].Title = title
			s.threads[i].Vision = vision
			s.threads[i].Goals = append([]string(nil), goals...)
			s.threads[i].UpdatedAt = time.Now()
			t := s.threads[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("thread %s not found", id)
}

// MemoryPlans is an in-memory plan registry.
type MemoryPlans struct {
	mu    sync.RWMutex
	plans map[string]*domain.ActionPlan // threadID+"\x00"+memberID → plan
	order []string
}

// NewMemoryPlans creates an empty in-memory plan registry.
func NewMemoryPlans() *MemoryPlans {
	return &MemoryPlans{plans: make(map[string]*domain.ActionPlan)}
}

func planKey(threadID, memberID string) string {
	return threadID + "\x00" + memberID
}

func (s *MemoryPlans) Upsert(threadID, memberID, plan, source string) (*domain.ActionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	key := planKey(threadID, memberID)

	if existing, ok := s.plans[key]; ok {
		existing.Plan = plan
		existing.Source = source
		existing.UpdatedAt = now
		p := *existing
		return &p, nil
	}

	p := &domain.ActionPlan{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		MemberID:  memberID,
		Plan:      plan,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.plans[key] = p
	s.order = append(s.order, key)
	out := *p
	return &out, nil
}

func (s *MemoryPlans) Delete(threadID, memberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := planKey(threadID, memberID)
	if _, ok := s.plans[key]; !ok {
		return
	}
	delete(s.plans, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryPlans) Get(threadID, memberID string) (*domain.ActionPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.plans[planKey(threadID, memberID)]; ok {
		out := *p
		return &out, nil
	}
	return nil, fmt.Errorf("plan not found")
}

func (s *MemoryPlans) List(threadID string) ([]domain.ActionPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ActionPlan
	for _, key := range s.order {
		p := s.plans[key]
		if p.ThreadID == threadID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *MemoryPlans) MarkExecuted(planID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == planID {
			p.ExecutedAt = time.Now()
			p.Summary = summary
			return nil
		}
	}
	return fmt.Errorf("plan %s not found", planID)
}

// MemoryFeed is an in-memory Feed implementation.
type MemoryFeed struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
	turns    []domain.MeetingTurn
	alerts   []domain.GovernanceAlert
	reports  []domain.Report
}

// NewMemoryFeed creates an empty in-memory feed store.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{}
}

func (s *MemoryFeed) AppendMessage(msg domain.ChatMessage) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *MemoryFeed) RecentMessages(threadID string, n int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ChatMessage
	for _, m := range s.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (s *MemoryFeed) AppendTurn(turn domain.MeetingTurn) (*domain.MeetingTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	s.turns = append(s.turns, turn)
	return &turn, nil
}

func (s *MemoryFeed) RecentTurns(threadID string, n int) ([]domain.MeetingTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.MeetingTurn
	for _, t := range s.turns {
		if t.ThreadID == threadID {
			out = append(out, t)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (s *MemoryFeed) SessionTurns(sessionID string) ([]domain.MeetingTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.MeetingTurn
	for _, t := range s.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryFeed) AppendAlert(alert domain.GovernanceAlert) (*domain.GovernanceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	s.alerts = append(s.alerts, alert)
	return &alert, nil
}

func (s *MemoryFeed) ListAlerts(threadID string) ([]domain.GovernanceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.GovernanceAlert
	for _, a := range s.alerts {
		if a.ThreadID == threadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryFeed) SaveReport(report domain.Report) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	s.reports = append(s.reports, report)
	return &report, nil
}

func (s *MemoryFeed) ListReports(threadID string) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Report
	for _, r := range s.reports {
		if r.ThreadID == threadID {
			out = append(out, r)
		}
	}
	return out, nil
}
