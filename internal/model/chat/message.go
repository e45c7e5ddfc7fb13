package chat

import "time"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Source is a display-only citation attached to a bot message.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Message is one turn of a conversation. Messages are never edited after
// they are appended to a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Type      Sender    `json:"type"`
	Text      string    `json:"text"`
	Sources   []Source  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IsBot reports whether the message was produced by the advisor.
func (m Message) IsBot() bool {
	return m.Type == SenderBot
}

// Answer is what a responder produces for one user question.
type Answer struct {
	Text    string
	Sources []Source
}
