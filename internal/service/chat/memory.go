package chat

import (
	"context"
	"sync"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// MemoryStore keeps transcripts in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]chat.Message)}
}

// Append adds a message to its session transcript.
func (s *MemoryStore) Append(_ context.Context, message chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return nil
}

// List returns up to limit messages of the session, oldest first.
func (s *MemoryStore) List(_ context.Context, sessionID string, limit int) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[sessionID]
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Recent returns the newest n messages of the session, oldest first.
func (s *MemoryStore) Recent(_ context.Context, sessionID string, n int) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[sessionID]
	if n <= 0 {
		return []chat.Message{}, nil
	}
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func (s *MemoryStore) Close() error { return nil }
