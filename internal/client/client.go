// Package client talks to the advisory backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("advisory backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("advisory backend returned %d: %s", e.StatusCode, e.Message)
}

// ChatClient sends questions to the advisory backend.
type ChatClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client for the backend at baseURL. Requests use the
// transport defaults; callers bound them through the context.
func New(baseURL string) *ChatClient {
	return &ChatClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// SendMessage posts one question and returns the advisor reply.
func (c *ChatClient) SendMessage(ctx context.Context, text, sessionID string) (*chat.SendResponse, error) {
	body, err := json.Marshal(chat.SendRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encode send request: %w", err)
	}

	var resp chat.SendResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/send", body, &resp); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &resp, nil
}

// LoadHistory fetches the stored transcript of a session.
func (c *ChatClient) LoadHistory(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var resp chat.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/history/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return resp.Messages, nil
}

func (c *ChatClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Detail
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
