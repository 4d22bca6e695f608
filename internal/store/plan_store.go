package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/officedhq/officed/internal/domain"
)

// SQLitePlans implements the plan registry backed by SQLite. The
// (thread_id, member_id) unique index enforces the one-live-plan
// invariant at the schema level.
type SQLitePlans struct {
	db *DB
}

// NewSQLitePlans creates a plan store using the given database.
func NewSQLitePlans(db *DB) *SQLitePlans {
	return &SQLitePlans{db: db}
}

// Upsert creates or overwrites the plan slot for (threadID, memberID).
// An existing slot keeps its id and created_at; plan, source, and
// updated_at are overwritten. Last writer wins, no merge.
func (s *SQLitePlans) Upsert(threadID, memberID, plan, source string) (*domain.ActionPlan, error) {
	now := time.Now()
	id := uuid.New().String()

	_, err := s.db.sql.Exec(
		`INSERT INTO plans (id, thread_id, member_id, plan, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(thread_id, member_id) DO UPDATE SET
		   plan = excluded.plan,
		   source = excluded.source,
		   updated_at = excluded.updated_at`,
		id, threadID, memberID, plan, source,
		now.Format(time.DateTime), now.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting plan: %w", err)
	}

	return s.Get(threadID, memberID)
}

// Get returns the plan for (threadID, memberID).
func (s *SQLitePlans) Get(threadID, memberID string) (*domain.ActionPlan, error) {
	row := s.db.sql.QueryRow(
		`SELECT id, thread_id, member_id, plan, source, created_at, updated_at, executed_at, summary
		 FROM plans WHERE thread_id = ? AND member_id = ?`, threadID, memberID)
	return scanPlan(row)
}

// List returns all plans for a thread in creation order.
func (s *SQLitePlans) List(threadID string) ([]domain.ActionPlan, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, thread_id, member_id, plan, source, created_at, updated_at, executed_at, summary
		 FROM plans WHERE thread_id = ? ORDER BY rowid`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.ActionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			continue
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// MarkExecuted records an execution event without altering the plan text.
func (s *SQLitePlans) MarkExecuted(planID, summary string) error {
	res, err := s.db.sql.Exec(
		`UPDATE plans SET executed_at = ?, summary = ? WHERE id = ?`,
		time.Now().Format(time.DateTime), summary, planID,
	)
	if err != nil {
		return fmt.Errorf("marking plan executed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("plan %s not found", planID)
	}
	return nil
}

func scanPlan(row rowScanner) (*domain.ActionPlan, error) {
	var p domain.ActionPlan
	var createdAt, updatedAt string
	var executedAt, summary sql.NullString

	if err := row.Scan(&p.ID, &p.ThreadID, &p.MemberID, &p.Plan, &p.Source,
		&createdAt, &updatedAt, &executedAt, &summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("plan not found")
		}
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	if executedAt.Valid {
		p.ExecutedAt, _ = time.Parse(time.DateTime, executedAt.String)
	}
	if summary.Valid {
		p.Summary = summary.String
	}
	return &p, nil
}
