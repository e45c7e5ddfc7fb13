package chat

import (
	"context"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// MaxHistory caps the number of messages returned for one session.
const MaxHistory = 1000

// Store persists conversation turns. Implementations return messages of a
// session in insertion order.
type Store interface {
	Append(ctx context.Context, message chat.Message) error
	// List returns the first limit messages of a session.
	List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error)
	// Recent returns the newest n messages of a session, oldest first.
	Recent(ctx context.Context, sessionID string, n int) ([]chat.Message, error)
	Close() error
}
