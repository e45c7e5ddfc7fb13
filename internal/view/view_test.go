package view

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
	"github.com/shetkarimitra/advisor/internal/model/chat"
	"github.com/shetkarimitra/advisor/internal/session"
	"github.com/shetkarimitra/advisor/internal/speech"
)

type stubReplier struct {
	reply   chat.Message
	err     error
	gate    chan struct{}
	entered chan struct{}
	calls   int
	mu      sync.Mutex
}

func (r *stubReplier) Reply(ctx context.Context, text string) (chat.Message, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.gate != nil {
		<-r.gate
	}
	return r.reply, r.err
}

type stubHistory struct {
	messages []chat.Message
	err      error
}

func (h stubHistory) LoadHistory(context.Context) ([]chat.Message, error) {
	return h.messages, h.err
}

type recordingSynth struct {
	mu     sync.Mutex
	spoken []string
}

func (s *recordingSynth) Speak(_ context.Context, u speech.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, u.Text)
	return nil
}

func newView(replier Replier, out *bytes.Buffer) *View {
	return New(Options{Session: session.New("s1"), Replier: replier, Out: out})
}

func TestSubmitSuccessAddsTwoMessages(t *testing.T) {
	replier := &stubReplier{reply: chat.Message{Text: "Use neem oil", Sources: []chat.Source{{Title: "ICAR", URL: "https://icar.org.in"}}}}
	v := newView(replier, &bytes.Buffer{})
	before := len(v.Messages())

	v.SetInput("pest on cotton")
	require.True(t, v.Submit(context.Background()))

	messages := v.Messages()
	require.Len(t, messages, before+2)
	assert.Equal(t, chat.SenderUser, messages[before].Type)
	assert.Equal(t, "pest on cotton", messages[before].Text)
	assert.Equal(t, chat.SenderBot, messages[before+1].Type)
	assert.Len(t, messages[before+1].Sources, 1)
	assert.Empty(t, v.Input())
	assert.False(t, v.Loading())
}

func TestSubmitFailureAppendsFallback(t *testing.T) {
	v := newView(&stubReplier{err: errors.New("connection refused")}, &bytes.Buffer{})
	before := len(v.Messages())

	v.SetInput("wheat")
	require.True(t, v.Submit(context.Background()))

	messages := v.Messages()
	require.Len(t, messages, before+2)
	assert.Equal(t, chat.FallbackReply, messages[before+1].Text)
	assert.Empty(t, messages[before+1].Sources)
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	replier := &stubReplier{reply: chat.Message{Text: "x"}}
	v := newView(replier, &bytes.Buffer{})
	before := v.Messages()

	for _, input := range []string{"", "   ", "\t\n"} {
		v.SetInput(input)
		assert.False(t, v.Submit(context.Background()))
	}

	assert.Equal(t, before, v.Messages())
	assert.Zero(t, replier.calls)
}

func TestSubmitWhileLoadingIsNoop(t *testing.T) {
	replier := &stubReplier{
		reply:   chat.Message{Text: "ok"},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	v := newView(replier, &bytes.Buffer{})
	ctx := context.Background()

	v.SetInput("first")
	done := make(chan bool)
	go func() { done <- v.Submit(ctx) }()
	<-replier.entered
	require.True(t, v.Loading())

	during := v.Messages()
	v.SetInput("second")
	assert.False(t, v.Submit(ctx))
	assert.Equal(t, during, v.Messages())
	assert.Equal(t, "second", v.Input())

	close(replier.gate)
	assert.True(t, <-done)
	assert.False(t, v.Loading())
	assert.Equal(t, 1, replier.calls)
}

func TestMockReplierCatalogAnswers(t *testing.T) {
	v := newView(MockReplier{Selector: advisory.NewDefaultSelector()}, &bytes.Buffer{})

	v.SetInput("माझ्या टोमॅटोच्या पिकावर रोग आहे")
	require.True(t, v.Submit(context.Background()))

	last, ok := v.session.LastBot()
	require.True(t, ok)
	assert.Contains(t, last.Text, "टोमॅटो")
	assert.NotEmpty(t, last.Sources)
}

func TestMockReplierHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MockReplier{Selector: advisory.NewDefaultSelector(), Delay: time.Hour}.Reply(ctx, "wheat")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInitRestoresHistory(t *testing.T) {
	var out bytes.Buffer
	v := New(Options{
		Session: session.New("s1"),
		Replier: &stubReplier{},
		History: stubHistory{messages: []chat.Message{
			{ID: "u1", Type: chat.SenderUser, Text: "गहू", Timestamp: time.Now()},
			{ID: "b1", Type: chat.SenderBot, Text: "सल्ला", Timestamp: time.Now()},
		}},
		Out: &out,
	})

	v.Init(context.Background())

	messages := v.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "गहू", messages[0].Text)
	assert.NotContains(t, out.String(), chat.Greeting)
}

func TestInitKeepsGreetingOnHistoryFailure(t *testing.T) {
	var out bytes.Buffer
	v := New(Options{
		Session: session.New("s1"),
		Replier: &stubReplier{},
		History: stubHistory{err: errors.New("offline")},
		Out:     &out,
	})

	v.Init(context.Background())

	messages := v.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, chat.Greeting, messages[0].Text)
	assert.Contains(t, out.String(), chat.Greeting)
}

func TestAutoSpeakReadsReply(t *testing.T) {
	synth := &recordingSynth{}
	v := New(Options{
		Session:     session.New("s1"),
		Replier:     &stubReplier{reply: chat.Message{Text: "पाणी द्या"}},
		Synthesizer: synth,
		AutoSpeak:   true,
	})

	v.SetInput("पाणी")
	require.True(t, v.Submit(context.Background()))
	v.output.Wait()

	assert.Equal(t, []string{"पाणी द्या"}, synth.spoken)
}

func TestAutoSpeakOffStaysSilent(t *testing.T) {
	synth := &recordingSynth{}
	v := New(Options{
		Session:     session.New("s1"),
		Replier:     &stubReplier{reply: chat.Message{Text: "ok"}},
		Synthesizer: synth,
	})

	v.Handle(context.Background(), "hello")
	v.output.Wait()
	assert.Empty(t, synth.spoken)

	v.Handle(context.Background(), "/say")
	v.output.Wait()
	assert.Equal(t, []string{"ok"}, synth.spoken)
}

func TestMicUnavailableShowsNotice(t *testing.T) {
	var out bytes.Buffer
	v := newView(&stubReplier{}, &out)

	v.Handle(context.Background(), "/mic")

	assert.False(t, v.Recording())
	assert.Contains(t, out.String(), "not available")
}

type fixedRecognizer struct{ text string }

func (fixedRecognizer) Available() bool { return true }
func (r fixedRecognizer) Recognize(context.Context, string) (string, error) {
	return r.text, nil
}

func TestTranscriptFillsInputAndEnterSends(t *testing.T) {
	replier := &stubReplier{reply: chat.Message{Text: "ok"}}
	v := New(Options{
		Session:    session.New("s1"),
		Replier:    replier,
		Recognizer: fixedRecognizer{text: "गव्हाला खत"},
	})
	ctx := context.Background()

	v.Handle(ctx, "/mic")
	v.input.Wait()
	assert.Equal(t, "गव्हाला खत", v.Input())

	v.Handle(ctx, "")
	messages := v.Messages()
	assert.Equal(t, "गव्हाला खत", messages[len(messages)-2].Text)
}

func TestWhitespaceLineKeepsTranscript(t *testing.T) {
	replier := &stubReplier{reply: chat.Message{Text: "ok"}}
	v := New(Options{
		Session:    session.New("s1"),
		Replier:    replier,
		Recognizer: fixedRecognizer{text: "गव्हाला खत"},
	})
	ctx := context.Background()

	v.Handle(ctx, "/mic")
	v.input.Wait()
	before := len(v.Messages())

	assert.False(t, v.Handle(ctx, "   "))
	assert.False(t, v.Handle(ctx, "\t"))
	assert.Equal(t, "गव्हाला खत", v.Input())
	assert.Zero(t, replier.calls)
	assert.Len(t, v.Messages(), before)
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	v := newView(&stubReplier{}, &out)
	ctx := context.Background()

	assert.False(t, v.Handle(ctx, "/speak on"))
	assert.True(t, v.AutoSpeak())
	assert.False(t, v.Handle(ctx, "/speak off"))
	assert.False(t, v.AutoSpeak())

	v.Handle(ctx, "/session")
	assert.Contains(t, out.String(), "s1")

	v.Handle(ctx, "/help")
	assert.Contains(t, out.String(), "/mic")

	assert.True(t, v.Handle(ctx, "/quit"))
}

func TestRunStopsAtEOFAndQuit(t *testing.T) {
	replier := &stubReplier{reply: chat.Message{Text: "ok"}}
	v := newView(replier, &bytes.Buffer{})

	err := v.Run(context.Background(), strings.NewReader("wheat\n/quit\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, replier.calls)

	require.NoError(t, v.Run(context.Background(), strings.NewReader("")))
}

func TestRenderMessage(t *testing.T) {
	var out bytes.Buffer
	ts := time.Date(2025, 3, 4, 9, 5, 0, 0, time.Local)
	renderMessage(&out, chat.Message{
		Type:      chat.SenderBot,
		Text:      "Spray neem",
		Timestamp: ts,
		Sources: []chat.Source{
			{Title: "ICAR", URL: "https://icar.org.in"},
			{Title: "KVK"},
		},
	})

	text := out.String()
	assert.Contains(t, text, "[09:05] शेतकरी मित्र: Spray neem")
	assert.Contains(t, text, "1. ICAR <https://icar.org.in>")
	assert.Contains(t, text, "2. KVK\n")
}
