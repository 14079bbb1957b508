package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS waitlist_entries (
	event_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	chat_id TEXT NOT NULL,
	event_title TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL CHECK (position > 0),
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (event_id, user_id),
	CONSTRAINT waitlist_entries_position_key UNIQUE (event_id, position) DEFERRABLE INITIALLY DEFERRED
);

CREATE TABLE IF NOT EXISTS user_credentials (
	user_id TEXT PRIMARY KEY,
	cookie TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func Migrate(ctx context.Context, pool DB) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
