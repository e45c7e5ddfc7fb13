package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetkarimitra/advisor/internal/model/chat"
	"github.com/shetkarimitra/advisor/internal/storage/local"
)

func TestLoadOrCreateIDIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	kv, err := local.Open(path)
	require.NoError(t, err)
	first, err := LoadOrCreateID(kv)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "session_"))

	again, err := LoadOrCreateID(kv)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	reopened, err := local.Open(path)
	require.NoError(t, err)
	afterRestart, err := LoadOrCreateID(reopened)
	require.NoError(t, err)
	assert.Equal(t, first, afterRestart)
}

type brokenKV struct{}

func (brokenKV) Get(string) (string, error) { return "", errors.New("permission denied") }
func (brokenKV) Set(string, string) error   { return nil }

func TestLoadOrCreateIDPropagatesReadErrors(t *testing.T) {
	_, err := LoadOrCreateID(brokenKV{})
	assert.Error(t, err)
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := New("s1")

	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, chat.SenderBot, messages[0].Type)
	assert.Equal(t, chat.Greeting, messages[0].Text)
	assert.Equal(t, "s1", messages[0].SessionID)
}

func TestAppendKeepsIDsUnique(t *testing.T) {
	s := New("s1")

	a := s.Append(chat.Message{ID: "x", Type: chat.SenderUser, Text: "one"})
	b := s.Append(chat.Message{ID: "x", Type: chat.SenderBot, Text: "two"})
	c := s.Append(chat.Message{Type: chat.SenderUser, Text: "three"})

	assert.Equal(t, "x", a.ID)
	assert.NotEqual(t, "x", b.ID)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.Timestamp.IsZero())

	texts := make([]string, 0, s.Len())
	for _, m := range s.Messages() {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{chat.Greeting, "one", "two", "three"}, texts)
}

func TestRestoreReplacesGreetingOnce(t *testing.T) {
	s := New("s1")
	assert.False(t, s.Restore(nil))

	history := []chat.Message{
		{ID: "u1", Type: chat.SenderUser, Text: "गहू"},
		{ID: "b1", Type: chat.SenderBot, Text: "सल्ला"},
	}
	require.True(t, s.Restore(history))
	assert.Equal(t, 2, s.Len())

	assert.False(t, s.Restore(history))
	assert.Equal(t, 2, s.Len())
}

func TestRestoreSkippedAfterConversationStarts(t *testing.T) {
	s := New("s1")
	s.Append(chat.Message{Type: chat.SenderUser, Text: "hi"})

	assert.False(t, s.Restore([]chat.Message{{ID: "u1", Type: chat.SenderUser, Text: "old"}}))
	assert.Equal(t, 2, s.Len())
}

func TestLastBot(t *testing.T) {
	s := New("s1")
	s.Append(chat.Message{Type: chat.SenderUser, Text: "hi"})

	last, ok := s.LastBot()
	require.True(t, ok)
	assert.Equal(t, chat.Greeting, last.Text)
}
