// Package chat stores advisory conversations and produces bot replies.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shetkarimitra/advisor/internal/metrics"
	"github.com/shetkarimitra/advisor/internal/model/chat"
)

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrEmptySessionID = errors.New("session_id is required")
)

// HistoryTurns is the number of earlier messages handed to the responder.
const HistoryTurns = 10

// Responder answers one farmer question given the earlier turns of the
// conversation.
type Responder interface {
	Respond(ctx context.Context, sessionID string, history []chat.Message, question string) (chat.Answer, error)
}

// Service coordinates the transcript store and the responder.
type Service struct {
	store     Store
	responder Responder
	now       func() time.Time
}

// NewService wires a store and responder together.
func NewService(store Store, responder Responder) *Service {
	return &Service{
		store:     store,
		responder: responder,
		now:       time.Now,
	}
}

// Send stores the user message, asks the responder for an answer and
// stores the bot reply. A responder error is logged and replaced by the
// fallback reply; only storage failures are returned.
func (s *Service) Send(ctx context.Context, sessionID, text string) (chat.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return chat.Message{}, ErrEmptySessionID
	}
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	history, err := s.store.Recent(ctx, sessionID, HistoryTurns)
	if err != nil {
		return chat.Message{}, fmt.Errorf("load history: %w", err)
	}

	userMsg := s.newMessage(sessionID, chat.SenderUser, text, nil)
	if err := s.store.Append(ctx, userMsg); err != nil {
		return chat.Message{}, fmt.Errorf("store user message: %w", err)
	}
	metrics.MessagesStored.WithLabelValues(string(chat.SenderUser)).Inc()
	log.Info().Str("session_id", sessionID).Msg("stored user message")

	answer := s.answer(ctx, sessionID, history, text)

	botMsg := s.newMessage(sessionID, chat.SenderBot, answer.Text, answer.Sources)
	if err := s.store.Append(ctx, botMsg); err != nil {
		return chat.Message{}, fmt.Errorf("store bot message: %w", err)
	}
	metrics.MessagesStored.WithLabelValues(string(chat.SenderBot)).Inc()
	log.Info().Str("session_id", sessionID).Msg("stored bot message")

	return botMsg, nil
}

// History returns the stored transcript of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrEmptySessionID
	}

	messages, err := s.store.List(ctx, sessionID, MaxHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	return messages, nil
}

func (s *Service) answer(ctx context.Context, sessionID string, history []chat.Message, question string) chat.Answer {
	start := s.now()
	answer, err := s.responder.Respond(ctx, sessionID, history, question)
	metrics.ResponderLatency.Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(answer.Text) == "" {
		err = errors.New("responder returned an empty answer")
	}
	if err != nil {
		metrics.ResponderFailures.Inc()
		log.Error().Err(err).Str("session_id", sessionID).Msg("generate answer")
		return chat.Answer{Text: chat.FallbackReply}
	}
	return answer
}

func (s *Service) newMessage(sessionID string, sender chat.Sender, text string, sources []chat.Source) chat.Message {
	if sources == nil {
		sources = []chat.Source{}
	}
	return chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      sender,
		Text:      text,
		Sources:   sources,
		Timestamp: s.now().UTC(),
	}
}
