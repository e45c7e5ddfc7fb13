package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// SQLiteStore persists transcripts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS chat_messages (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT UNIQUE NOT NULL,
		session_id TEXT NOT NULL,
		type       TEXT NOT NULL,
		text       TEXT NOT NULL,
		sources    TEXT NOT NULL DEFAULT '[]',
		timestamp  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, seq);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

// Append inserts a message.
func (s *SQLiteStore) Append(ctx context.Context, message chat.Message) error {
	sources := message.Sources
	if sources == nil {
		sources = []chat.Source{}
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, type, text, sources, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, string(message.Type), message.Text, string(encoded),
		message.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// List returns up to limit messages of the session, oldest first.
func (s *SQLiteStore) List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = MaxHistory
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, text, sources, timestamp
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY seq ASC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Recent returns the newest n messages of the session, oldest first.
func (s *SQLiteStore) Recent(ctx context.Context, sessionID string, n int) ([]chat.Message, error) {
	if n <= 0 {
		return []chat.Message{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, text, sources, timestamp
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

func scanMessages(rows *sql.Rows) ([]chat.Message, error) {
	var messages []chat.Message
	for rows.Next() {
		var (
			msg       chat.Message
			msgType   string
			sources   string
			timestamp string
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msgType, &msg.Text, &sources, &timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Type = chat.Sender(msgType)
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			return nil, fmt.Errorf("decode sources of %s: %w", msg.ID, err)
		}
		ts, err := chat.ParseTimestamp(timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp of %s: %w", msg.ID, err)
		}
		msg.Timestamp = ts
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
