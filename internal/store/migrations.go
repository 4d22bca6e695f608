package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create threads and plans",
		SQL: `
			CREATE TABLE threads (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				vision      TEXT NOT NULL DEFAULT '',
				goals       TEXT NOT NULL DEFAULT '[]',
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE plans (
				id           TEXT PRIMARY KEY,
				thread_id    TEXT NOT NULL,
				member_id    TEXT NOT NULL,
				plan         TEXT NOT NULL,
				source       TEXT NOT NULL,
				created_at   TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at   TEXT NOT NULL DEFAULT (datetime('now')),
				executed_at  TEXT,
				summary      TEXT
			);

			CREATE UNIQUE INDEX idx_plans_thread_member ON plans (thread_id, member_id);
		`,
	},
	{
		Version: 2,
		Name:    "create feed tables",
		SQL: `
			CREATE TABLE messages (
				id          TEXT PRIMARY KEY,
				thread_id   TEXT NOT NULL,
				sender_id   TEXT NOT NULL,
				body        TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX idx_messages_thread ON messages (thread_id);

			CREATE TABLE meeting_turns (
				id          TEXT PRIMARY KEY,
				thread_id   TEXT NOT NULL,
				session_id  TEXT NOT NULL,
				room        TEXT NOT NULL DEFAULT '',
				speaker_id  TEXT NOT NULL,
				text        TEXT NOT NULL,
				source      TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX idx_turns_thread ON meeting_turns (thread_id);
			CREATE INDEX idx_turns_session ON meeting_turns (session_id);

			CREATE TABLE alerts (
				id          TEXT PRIMARY KEY,
				thread_id   TEXT NOT NULL,
				source      TEXT NOT NULL,
				status      TEXT NOT NULL,
				message     TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX idx_alerts_thread ON alerts (thread_id, timestamp);

			CREATE TABLE reports (
				id             TEXT PRIMARY KEY,
				thread_id      TEXT NOT NULL,
				task           TEXT NOT NULL,
				body           TEXT NOT NULL,
				body_ref       TEXT NOT NULL DEFAULT '',
				transcript_ref TEXT NOT NULL DEFAULT '',
				created_at     TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX idx_reports_thread ON reports (thread_id, created_at);
		`,
	},
}
