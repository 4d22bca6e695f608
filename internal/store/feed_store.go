package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/officedhq/officed/internal/domain"
)

// SQLiteFeed implements the append-only feed collections backed by SQLite.
type SQLiteFeed struct {
	db *DB
}

// NewSQLiteFeed creates a feed store using the given database.
func NewSQLiteFeed(db *DB) *SQLiteFeed {
	return &SQLiteFeed{db: db}
}

// AppendMessage records a chat message. The timestamp is server-assigned
// when zero.
func (s *SQLiteFeed) AppendMessage(msg domain.ChatMessage) (*domain.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO messages (id, thread_id, sender_id, body, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.SenderID, msg.Body, msg.Timestamp.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}
	return &msg, nil
}

// RecentMessages returns the newest n messages for a thread in
// chronological order.
func (s *SQLiteFeed) RecentMessages(threadID string, n int) ([]domain.ChatMessage, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, sender_id, body, timestamp FROM (
		   SELECT rowid, id, sender_id, body, timestamp
		   FROM messages WHERE thread_id = ? ORDER BY rowid DESC LIMIT ?
		 ) ORDER BY rowid`, threadID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var ts string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.Body, &ts); err != nil {
			continue
		}
		m.ThreadID = threadID
		m.Timestamp, _ = time.Parse(time.DateTime, ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AppendTurn records a meeting turn.
func (s *SQLiteFeed) AppendTurn(turn domain.MeetingTurn) (*domain.MeetingTurn, error) {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO meeting_turns (id, thread_id, session_id, room, speaker_id, text, source, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.ThreadID, turn.SessionID, turn.Room, turn.SpeakerID,
		turn.Text, turn.Source, turn.Timestamp.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("appending turn: %w", err)
	}
	return &turn, nil
}

// RecentTurns returns the newest n meeting turns for a thread in
// chronological order.
func (s *SQLiteFeed) RecentTurns(threadID string, n int) ([]domain.MeetingTurn, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, session_id, room, speaker_id, text, source, timestamp FROM (
		   SELECT rowid, id, session_id, room, speaker_id, text, source, timestamp
		   FROM meeting_turns WHERE thread_id = ? ORDER BY rowid DESC LIMIT ?
		 ) ORDER BY rowid`, threadID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTurns(rows, threadID)
}

// SessionTurns returns all turns of one session in speaking order.
func (s *SQLiteFeed) SessionTurns(sessionID string) ([]domain.MeetingTurn, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, session_id, room, speaker_id, text, source, timestamp, thread_id
		 FROM meeting_turns WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.MeetingTurn
	for rows.Next() {
		var t domain.MeetingTurn
		var ts string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Room, &t.SpeakerID, &t.Text, &t.Source, &ts, &t.ThreadID); err != nil {
			continue
		}
		t.Timestamp, _ = time.Parse(time.DateTime, ts)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// AppendAlert records a governance alert.
func (s *SQLiteFeed) AppendAlert(alert domain.GovernanceAlert) (*domain.GovernanceAlert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO alerts (id, thread_id, source, status, message, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.ThreadID, alert.Source, alert.Status, alert.Message,
		alert.Timestamp.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("appending alert: %w", err)
	}
	return &alert, nil
}

// ListAlerts returns all alerts for a thread in creation order.
func (s *SQLiteFeed) ListAlerts(threadID string) ([]domain.GovernanceAlert, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, source, status, message, timestamp
		 FROM alerts WHERE thread_id = ? ORDER BY rowid`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.GovernanceAlert
	for rows.Next() {
		var a domain.GovernanceAlert
		var ts string
		if err := rows.Scan(&a.ID, &a.Source, &a.Status, &a.Message, &ts); err != nil {
			continue
		}
		a.ThreadID = threadID
		a.Timestamp, _ = time.Parse(time.DateTime, ts)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// SaveReport persists a final report.
func (s *SQLiteFeed) SaveReport(report domain.Report) (*domain.Report, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO reports (id, thread_id, task, body, body_ref, transcript_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.ThreadID, report.Task, report.Body,
		report.BodyRef, report.TranscriptRef, report.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	return &report, nil
}

// ListReports returns all reports for a thread in creation order.
func (s *SQLiteFeed) ListReports(threadID string) ([]domain.Report, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, task, body, body_ref, transcript_ref, created_at
		 FROM reports WHERE thread_id = ? ORDER BY rowid`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var r domain.Report
		var ts string
		if err := rows.Scan(&r.ID, &r.Task, &r.Body, &r.BodyRef, &r.TranscriptRef, &ts); err != nil {
			continue
		}
		r.ThreadID = threadID
		r.CreatedAt, _ = time.Parse(time.DateTime, ts)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func scanTurns(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}, threadID string) ([]domain.MeetingTurn, error) {
	var turns []domain.MeetingTurn
	for rows.Next() {
		var t domain.MeetingTurn
		var ts string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Room, &t.SpeakerID, &t.Text, &t.Source, &ts); err != nil {
			continue
		}
		t.ThreadID = threadID
		t.Timestamp, _ = time.Parse(time.DateTime, ts)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
