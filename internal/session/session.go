// Package session holds the client-side conversation: a stable session
// identifier and the append-only message list.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shetkarimitra/advisor/internal/model/chat"
	"github.com/shetkarimitra/advisor/internal/storage/local"
)

// IDKey is the key under which the session identifier is persisted.
const IDKey = "shetkari_session_id"

const greetingID = "greeting"

// KV is the persistent key/value capability.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// LoadOrCreateID returns the persisted session identifier, creating and
// storing a new one on first use.
func LoadOrCreateID(kv KV) (string, error) {
	id, err := kv.Get(IDKey)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, local.ErrNotFound) {
		return "", fmt.Errorf("read session id: %w", err)
	}

	id = "session_" + uuid.NewString()
	if err := kv.Set(IDKey, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	return id, nil
}

// Session is the ordered message history of one conversation.
type Session struct {
	mu       sync.RWMutex
	id       string
	messages []chat.Message
	ids      map[string]struct{}
	now      func() time.Time
}

// New starts a session that holds only the greeting.
func New(id string) *Session {
	s := &Session{id: id, ids: make(map[string]struct{}), now: time.Now}
	s.Append(chat.Message{ID: greetingID, Type: chat.SenderBot, Text: chat.Greeting})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds msg to the end of the history and returns it as stored. A
// missing or already used id is replaced with a fresh one, and a zero
// timestamp is set to now.
func (s *Session) Append(msg chat.Message) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(msg)
}

func (s *Session) appendLocked(msg chat.Message) chat.Message {
	if _, dup := s.ids[msg.ID]; msg.ID == "" || dup {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	msg.SessionID = s.id
	s.ids[msg.ID] = struct{}{}
	s.messages = append(s.messages, msg)
	return msg
}

// Restore swaps the initial greeting for history loaded from the backend.
// It does nothing once the conversation has moved past the greeting or
// when history is empty, and reports whether the swap happened.
func (s *Session) Restore(history []chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(history) == 0 || len(s.messages) != 1 || s.messages[0].ID != greetingID {
		return false
	}

	s.messages = nil
	s.ids = make(map[string]struct{}, len(history))
	for _, msg := range history {
		s.appendLocked(msg)
	}
	return true
}

// Messages returns a copy of the history.
func (s *Session) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// LastBot returns the most recent bot message.
func (s *Session) LastBot() (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsBot() {
			return s.messages[i], true
		}
	}
	return chat.Message{}, false
}
