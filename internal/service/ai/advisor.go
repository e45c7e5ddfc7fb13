// Package ai produces advisory answers, either from an Ark chat model or
// from the offline reply catalog.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

const historyLimit = 10

// Advisor answers farmer questions with an LLM chain.
type Advisor struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewAdvisor compiles the prompt chain around chatModel.
func NewAdvisor(ctx context.Context, chatModel model.BaseChatModel) (*Advisor, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile advisory chain: %w", err)
	}

	return &Advisor{chain: runnable}, nil
}

// Respond runs the chain with the system instruction, the most recent
// turns and the question.
func (a *Advisor) Respond(ctx context.Context, sessionID string, history []chat.Message, question string) (chat.Answer, error) {
	input := map[string]any{
		"system":  SystemInstruction,
		"history": buildHistoryMessages(history),
		"query":   question,
	}

	response, err := a.chain.Invoke(ctx, input)
	if err != nil {
		return chat.Answer{}, fmt.Errorf("failed to run advisory chain: %w", err)
	}

	text := strings.TrimSpace(response.Content)
	log.Info().Str("session_id", sessionID).Int("length", len(text)).Msg("generated advisory answer")
	return chat.Answer{Text: text, Sources: []chat.Source{}}, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Type {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderBot:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return history
}
