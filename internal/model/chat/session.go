package chat

import "time"

// SendRequest is the body of POST /api/chat/send.
type SendRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SendResponse is the advisor reply returned by POST /api/chat/send.
type SendResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Sources   []Source  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse is returned by GET /api/chat/history/{session_id}.
type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// BotMessage converts a send response into the message the client appends.
func (r SendResponse) BotMessage() Message {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{
		ID:        r.ID,
		Type:      SenderBot,
		Text:      r.Message,
		Sources:   r.Sources,
		Timestamp: ts,
	}
}
