package postgres

import (
	"context"
	"fmt"
)

// schema is applied statement by statement and is safe to re-run
var schema = []string{
	`CREATE TABLE IF NOT EXISTS "user" (
		id            SERIAL PRIMARY KEY,
		name          VARCHAR(120) NOT NULL,
		username      VARCHAR(80)  NOT NULL UNIQUE,
		password_hash VARCHAR(120) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participant (
		id            SERIAL PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		date_of_birth DATE         NOT NULL,
		gender        VARCHAR(10)  NOT NULL,
		pathology     VARCHAR(100),
		created_at    TIMESTAMP    NOT NULL,
		created_by    INTEGER      NOT NULL REFERENCES "user"(id)
	)`,
	`CREATE TABLE IF NOT EXISTS video (
		id             SERIAL PRIMARY KEY,
		participant_id INTEGER      NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
		url            VARCHAR(200) NOT NULL,
		score          INTEGER      NOT NULL,
		comment        VARCHAR(500),
		created_at     TIMESTAMP    NOT NULL,
		created_by     INTEGER      NOT NULL REFERENCES "user"(id)
	)`,
	`CREATE INDEX IF NOT EXISTS video_participant_id_idx ON video (participant_id)`,
}

// Migrate creates the tables if they do not already exist
func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	s.logger.Info("database schema applied", "statements", len(schema))
	return nil
}
