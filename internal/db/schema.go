// internal/db/schema.go
package db

import "database/sql"

// All timestamps are stored as epoch seconds (BIGINT) so that values
// round-trip unchanged between the API and the dispatcher.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		slack_user_id TEXT UNIQUE NOT NULL,
		team_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		webhook_url TEXT,
		token_expires_at BIGINT,
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
		updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		channel_name TEXT NOT NULL,
		message TEXT NOT NULL,
		scheduled_for BIGINT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
		in_flight_at BIGINT,
		sent_at BIGINT,
		error_message TEXT,
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_slack_user_id ON users (slack_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_messages_user_id ON scheduled_messages (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_messages_status ON scheduled_messages (status)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_messages_scheduled_for ON scheduled_messages (scheduled_for)`,
}

// InitSchema creates the tables and indexes if they do not exist yet.
func InitSchema(conn *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
