package database

import (
	"context"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS chats (
		id BIGSERIAL PRIMARY KEY,
		account_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		title TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE(account_id, topic)
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_chat_id_idx ON chat_messages(chat_id, id)`,
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context) error {
	if Pool == nil {
		return nil
	}
	for _, s := range statements {
		if _, err := Pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("schema ensure: %w in stmt: %s", err, s)
		}
	}
	return nil
}
