package view

import (
	"context"
	"time"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
	"github.com/shetkarimitra/advisor/internal/client"
	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// DefaultMockDelay imitates the latency of a real backend.
const DefaultMockDelay = 1500 * time.Millisecond

// Replier produces the bot message for one user question.
type Replier interface {
	Reply(ctx context.Context, text string) (chat.Message, error)
}

// HistoryLoader fetches the stored transcript of the current session.
type HistoryLoader interface {
	LoadHistory(ctx context.Context) ([]chat.Message, error)
}

// MockReplier answers from the offline catalog after a fixed delay.
type MockReplier struct {
	Selector *advisory.Selector
	Delay    time.Duration
}

// Reply waits for the delay and returns the catalog answer.
func (m MockReplier) Reply(ctx context.Context, text string) (chat.Message, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return chat.Message{}, ctx.Err()
		case <-timer.C:
		}
	}

	reply := m.Selector.Select(text)
	return chat.Message{
		Type:      chat.SenderBot,
		Text:      reply.Text,
		Sources:   reply.Sources,
		Timestamp: time.Now(),
	}, nil
}

// RemoteReplier asks the advisory backend.
type RemoteReplier struct {
	Client    *client.ChatClient
	SessionID string
}

// Reply sends text and converts the response into a bot message.
func (r RemoteReplier) Reply(ctx context.Context, text string) (chat.Message, error) {
	resp, err := r.Client.SendMessage(ctx, text, r.SessionID)
	if err != nil {
		return chat.Message{}, err
	}
	return resp.BotMessage(), nil
}

// LoadHistory fetches the transcript stored by the backend.
func (r RemoteReplier) LoadHistory(ctx context.Context) ([]chat.Message, error) {
	return r.Client.LoadHistory(ctx, r.SessionID)
}
