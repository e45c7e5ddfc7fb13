package chat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetkarimitra/advisor/internal/model/chat"
	chatService "github.com/shetkarimitra/advisor/internal/service/chat"
)

type stubResponder struct {
	answer  chat.Answer
	err     error
	history []chat.Message
	calls   int
}

func (r *stubResponder) Respond(_ context.Context, _ string, history []chat.Message, _ string) (chat.Answer, error) {
	r.calls++
	r.history = history
	return r.answer, r.err
}

func TestServiceSendStoresBothTurns(t *testing.T) {
	responder := &stubResponder{answer: chat.Answer{
		Text:    "Use neem oil.",
		Sources: []chat.Source{{Title: "ICAR", URL: "https://icar.org.in"}},
	}}
	svc := chatService.NewService(chatService.NewMemoryStore(), responder)
	ctx := context.Background()

	reply, err := svc.Send(ctx, "s1", "pest on cotton")
	require.NoError(t, err)
	assert.Equal(t, chat.SenderBot, reply.Type)
	assert.Equal(t, "Use neem oil.", reply.Text)
	assert.NotEmpty(t, reply.ID)

	history, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, chat.SenderUser, history[0].Type)
	assert.Equal(t, "pest on cotton", history[0].Text)
	assert.Equal(t, reply.ID, history[1].ID)
	assert.Len(t, history[1].Sources, 1)
}

func TestServiceSendFallsBackOnResponderError(t *testing.T) {
	responder := &stubResponder{err: errors.New("model unavailable")}
	svc := chatService.NewService(chatService.NewMemoryStore(), responder)

	reply, err := svc.Send(context.Background(), "s1", "माती परीक्षण")
	require.NoError(t, err)
	assert.Equal(t, chat.FallbackReply, reply.Text)
	assert.Empty(t, reply.Sources)
}

func TestServiceSendFallsBackOnEmptyAnswer(t *testing.T) {
	svc := chatService.NewService(chatService.NewMemoryStore(), &stubResponder{})

	reply, err := svc.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, chat.FallbackReply, reply.Text)
}

func TestServiceSendValidatesInput(t *testing.T) {
	responder := &stubResponder{answer: chat.Answer{Text: "ok"}}
	svc := chatService.NewService(chatService.NewMemoryStore(), responder)
	ctx := context.Background()

	_, err := svc.Send(ctx, "", "hello")
	assert.ErrorIs(t, err, chatService.ErrEmptySessionID)

	_, err = svc.Send(ctx, "s1", "   ")
	assert.ErrorIs(t, err, chatService.ErrEmptyMessage)

	assert.Zero(t, responder.calls)
}

func TestServiceSendPassesRecentTurns(t *testing.T) {
	responder := &stubResponder{answer: chat.Answer{Text: "ok"}}
	svc := chatService.NewService(chatService.NewMemoryStore(), responder)
	ctx := context.Background()

	for range 8 {
		_, err := svc.Send(ctx, "s1", "question")
		require.NoError(t, err)
	}

	assert.Len(t, responder.history, chatService.HistoryTurns)
	assert.Equal(t, chat.SenderUser, responder.history[len(responder.history)-2].Type)
	assert.Equal(t, chat.SenderBot, responder.history[len(responder.history)-1].Type)
}

func TestServiceSendUsesNewestTurnsOfLongSession(t *testing.T) {
	store := chatService.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	total := chatService.MaxHistory + 5
	for i := range total {
		require.NoError(t, store.Append(ctx, chat.Message{
			ID:        fmt.Sprintf("m%d", i),
			SessionID: "s1",
			Type:      chat.SenderUser,
			Text:      fmt.Sprintf("q%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	responder := &stubResponder{answer: chat.Answer{Text: "ok"}}
	svc := chatService.NewService(store, responder)
	_, err := svc.Send(ctx, "s1", "latest")
	require.NoError(t, err)

	require.Len(t, responder.history, chatService.HistoryTurns)
	assert.Equal(t, fmt.Sprintf("q%d", total-chatService.HistoryTurns), responder.history[0].Text)
	assert.Equal(t, fmt.Sprintf("q%d", total-1), responder.history[chatService.HistoryTurns-1].Text)
}

func TestServiceHistoryUnknownSessionIsEmpty(t *testing.T) {
	svc := chatService.NewService(chatService.NewMemoryStore(), &stubResponder{})

	history, err := svc.History(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := chatService.NewService(chatService.NewMemoryStore(), &stubResponder{answer: chat.Answer{Text: "ok"}})
	ctx := context.Background()

	_, err := svc.Send(ctx, "a", "one")
	require.NoError(t, err)

	history, err := svc.History(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, history)
}
