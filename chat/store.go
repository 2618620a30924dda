package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps transcripts per account and topic ("complaint", "scheme", "scheme:<id>").
type Store interface {
	Load(ctx context.Context, accountID, topic string) ([]Message, error)
	Append(ctx context.Context, accountID, topic string, msgs ...Message) error
}

type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]Message{}}
}

func (m *MemoryStore) Load(_ context.Context, accountID, topic string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.data[accountID+"/"+topic]...), nil
}

func (m *MemoryStore) Append(_ context.Context, accountID, topic string, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := accountID + "/" + topic
	m.data[k] = append(m.data[k], msgs...)
	return nil
}

// PostgresStore uses the chats and chat_messages tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Load(ctx context.Context, accountID, topic string) ([]Message, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT m.role, m.content, m.created_at
		FROM chat_messages m
		JOIN chats c ON c.id = m.chat_id
		WHERE c.account_id=$1 AND c.topic=$2
		ORDER BY m.id ASC`, accountID, topic)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()
	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (p *PostgresStore) Append(ctx context.Context, accountID, topic string, msgs ...Message) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var chatID int64
	err = tx.QueryRow(ctx, `INSERT INTO chats(account_id,topic,title) VALUES($1,$2,$2)
ON CONFLICT (account_id, topic) DO UPDATE SET topic=EXCLUDED.topic
RETURNING id`, accountID, topic).Scan(&chatID)
	if err != nil {
		return fmt.Errorf("ensure chat: %w", err)
	}
	for _, m := range msgs {
		if _, err := tx.Exec(ctx, `INSERT INTO chat_messages(chat_id,role,content,created_at) VALUES($1,$2,$3,$4)`,
			chatID, string(m.Role), m.Content, m.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit(ctx)
}
