package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

func newBackend(t *testing.T) (*httptest.Server, *[]chat.SendRequest) {
	t.Helper()
	var received []chat.SendRequest

	r := chi.NewRouter()
	r.Post("/api/chat/send", func(w http.ResponseWriter, r *http.Request) {
		var req chat.SendRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received = append(received, req)
		if req.Message == "explode" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"model down"}`))
			return
		}
		json.NewEncoder(w).Encode(chat.SendResponse{
			ID:        "b1",
			Message:   "reply to " + req.Message,
			Sources:   []chat.Source{{Title: "ICAR", URL: "https://icar.org.in"}},
			Timestamp: time.Date(2025, 1, 2, 10, 4, 0, 0, time.UTC),
		})
	})
	r.Get("/api/chat/history/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chat.HistoryResponse{
			SessionID: chi.URLParam(r, "sessionID"),
			Messages: []chat.Message{
				{ID: "u1", Type: chat.SenderUser, Text: "गहू"},
				{ID: "b1", Type: chat.SenderBot, Text: "सल्ला"},
			},
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &received
}

func TestSendMessage(t *testing.T) {
	srv, received := newBackend(t)
	c := New(srv.URL + "/")

	resp, err := c.SendMessage(context.Background(), "wheat", "s1")
	require.NoError(t, err)
	assert.Equal(t, "reply to wheat", resp.Message)
	assert.Len(t, resp.Sources, 1)

	require.Len(t, *received, 1)
	assert.Equal(t, chat.SendRequest{Message: "wheat", SessionID: "s1"}, (*received)[0])

	bot := resp.BotMessage()
	assert.Equal(t, chat.SenderBot, bot.Type)
	assert.Equal(t, "b1", bot.ID)
}

func TestSendMessageServerError(t *testing.T) {
	srv, _ := newBackend(t)

	_, err := New(srv.URL).SendMessage(context.Background(), "explode", "s1")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "model down", statusErr.Message)
}

func TestSendMessageUnreachable(t *testing.T) {
	srv, _ := newBackend(t)
	srv.Close()

	_, err := New(srv.URL).SendMessage(context.Background(), "wheat", "s1")
	assert.Error(t, err)
}

func TestLoadHistory(t *testing.T) {
	srv, _ := newBackend(t)

	messages, err := New(srv.URL).LoadHistory(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, chat.SenderUser, messages[0].Type)
	assert.Equal(t, "सल्ला", messages[1].Text)
}

func TestLoadHistoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(srv.URL).LoadHistory(context.Background(), "s1")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestZonelessTimestamps(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/chat/send", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"b1","message":"ok","sources":[],"timestamp":"2025-01-02T10:11:12.123456"}`))
	})
	r.Get("/api/chat/history/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id":"s1","messages":[` +
			`{"id":"u1","type":"user","text":"गहू","timestamp":"2025-01-02T10:11:10.5"},` +
			`{"id":"b1","type":"bot","text":"सल्ला","sources":[],"timestamp":"2025-01-02T10:11:12.123456"}]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	want := time.Date(2025, 1, 2, 10, 11, 12, 123456000, time.UTC)

	resp, err := c.SendMessage(context.Background(), "wheat", "s1")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
	assert.True(t, want.Equal(resp.Timestamp), "got %s", resp.Timestamp)

	messages, err := c.LoadHistory(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.True(t, time.Date(2025, 1, 2, 10, 11, 10, 500000000, time.UTC).Equal(messages[0].Timestamp))
	assert.True(t, want.Equal(messages[1].Timestamp))
}
