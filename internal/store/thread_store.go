package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/officedhq/officed/internal/domain"
)

// SQLiteThreads implements Threads backed by SQLite.
type SQLiteThreads struct {
	db *DB
}

// NewSQLiteThreads creates a thread store using the given database.
func NewSQLiteThreads(db *DB) *SQLiteThreads {
	return &SQLiteThreads{db: db}
}

// Create inserts a new thread.
func (s *SQLiteThreads) Create(title, vision string, goals []string) (*domain.Thread, error) {
	now := time.Now()
	t := domain.Thread{
		ID:        uuid.New().String(),
		Title:     title,
		Vision:    vision,
		Goals:     goals,
		CreatedAt: now,
		UpdatedAt: now,
	}

	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return nil, err
	}

	_, err = s.db.sql.Exec(
		`INSERT INTO threads (id, title, vision, goals, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Vision, string(goalsJSON),
		now.Format(time.DateTime), now.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return &t, nil
}

// Get returns a thread by id.
func (s *SQLiteThreads) Get(id string) (*domain.Thread, error) {
	row := s.db.sql.QueryRow(
		`SELECT id, title, vision, goals, created_at, updated_at FROM threads WHERE id = ?`, id)
	return scanThread(row)
}

// List returns all threads, most recently updated first.
func (s *SQLiteThreads) List() ([]domain.Thread, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, title, vision, goals, created_at, updated_at
		 FROM threads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			continue
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

// Update overwrites title, vision, and goals.
func (s *SQLiteThreads) Update(id, title, vision string, goals []string) (*domain.Thread, error) {
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return nil, err
	}

	res, err := s.db.sql.Exec(
		`UPDATE threads SET title = ?, vision = ?, goals = ?, updated_at = ? WHERE id = ?`,
		title, vision, string(goalsJSON), time.Now().Format(time.DateTime), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating thread: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("thread %s not found", id)
	}
	return s.Get(id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (*domain.Thread, error) {
	var t domain.Thread
	var goalsJSON, createdAt, updatedAt string

	if err := row.Scan(&t.ID, &t.Title, &t.Vision, &goalsJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("thread not found")
		}
		return nil, err
	}
	_ = json.Unmarshal([]byte(goalsJSON), &t.Goals)
	t.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	t.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &t, nil
}
