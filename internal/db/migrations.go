package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			host         TEXT NOT NULL DEFAULT '',
			artists      TEXT NOT NULL DEFAULT '',
			venue        TEXT NOT NULL DEFAULT '',
			city         TEXT NOT NULL DEFAULT '',
			starts_at    TEXT NOT NULL,
			price        REAL,
			capacity     INTEGER NOT NULL DEFAULT 0 CHECK(capacity >= 0),
			tickets_sold INTEGER NOT NULL DEFAULT 0 CHECK(tickets_sold >= 0),
			status       TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'published', 'cancelled', 'completed')),
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at);
		CREATE INDEX IF NOT EXISTS idx_events_status ON events(status);
		CREATE INDEX IF NOT EXISTS idx_events_city ON events(city COLLATE NOCASE);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	return nil
}
