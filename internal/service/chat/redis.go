package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// RedisStore keeps each transcript in a Redis list.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the server described by redisURL.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func sessionMessagesKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s:messages", sessionID)
}

// Append pushes a message onto the session list.
func (s *RedisStore) Append(ctx context.Context, message chat.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := s.client.RPush(ctx, sessionMessagesKey(message.SessionID), data).Err(); err != nil {
		return fmt.Errorf("rpush message: %w", err)
	}
	return nil
}

// List returns up to limit messages of the session, oldest first.
func (s *RedisStore) List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = MaxHistory
	}

	items, err := s.client.LRange(ctx, sessionMessagesKey(sessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange messages: %w", err)
	}

	return decodeMessages(items)
}

// Recent returns the newest n messages of the session, oldest first.
func (s *RedisStore) Recent(ctx context.Context, sessionID string, n int) ([]chat.Message, error) {
	if n <= 0 {
		return []chat.Message{}, nil
	}

	items, err := s.client.LRange(ctx, sessionMessagesKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange recent messages: %w", err)
	}
	return decodeMessages(items)
}

func decodeMessages(items []string) ([]chat.Message, error) {
	messages := make([]chat.Message, 0, len(items))
	for _, item := range items {
		var msg chat.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
