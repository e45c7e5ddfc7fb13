// Package view is the terminal chat screen. It owns the session, routes
// questions to a replier and drives voice input and output.
package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/shetkarimitra/advisor/internal/model/chat"
	"github.com/shetkarimitra/advisor/internal/session"
	"github.com/shetkarimitra/advisor/internal/speech"
)

// Options configures a View.
type Options struct {
	Session     *session.Session
	Replier     Replier
	History     HistoryLoader
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	Locale      string
	AutoSpeak   bool
	Out         io.Writer
}

// View is the chat screen state: message list, input field and flags.
type View struct {
	session *session.Session
	replier Replier
	history HistoryLoader
	input   *speech.Input
	output  *speech.Output

	outMu sync.Mutex
	out   io.Writer

	mu        sync.Mutex
	inputText string
	loading   bool
	autoSpeak bool
}

// New builds a view. Recognizer, Synthesizer and History are optional.
func New(opts Options) *View {
	v := &View{
		session:   opts.Session,
		replier:   opts.Replier,
		history:   opts.History,
		output:    speech.NewOutput(opts.Synthesizer),
		out:       opts.Out,
		autoSpeak: opts.AutoSpeak,
	}
	if v.out == nil {
		v.out = io.Discard
	}
	v.input = speech.NewInput(opts.Recognizer, opts.Locale, v.onTranscript)
	return v
}

// Init replaces the greeting with the stored history when the backend has
// any, then prints the conversation. History failures keep the greeting.
func (v *View) Init(ctx context.Context) {
	if v.history != nil {
		messages, err := v.history.LoadHistory(ctx)
		if err != nil {
			log.Error().Err(err).Str("session_id", v.session.ID()).Msg("load chat history")
		} else if v.session.Restore(messages) {
			log.Info().Str("session_id", v.session.ID()).Int("messages", len(messages)).Msg("restored chat history")
		}
	}

	for _, msg := range v.session.Messages() {
		v.render(msg)
	}
}

// Messages returns the conversation so far.
func (v *View) Messages() []chat.Message {
	return v.session.Messages()
}

// SetInput replaces the contents of the input field.
func (v *View) SetInput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputText = text
}

// Input returns the contents of the input field.
func (v *View) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputText
}

// Loading reports whether a reply is outstanding.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// AutoSpeak reports whether replies are read aloud.
func (v *View) AutoSpeak() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.autoSpeak
}

// SetAutoSpeak toggles reading replies aloud.
func (v *View) SetAutoSpeak(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.autoSpeak = on
}

// Recording reports whether voice input is active.
func (v *View) Recording() bool {
	return v.input.Recording()
}

// Speaking reports whether a reply is being read aloud.
func (v *View) Speaking() bool {
	return v.output.Speaking()
}

// Submit sends the input field. Empty input or a send already in flight
// make it a no-op; it reports whether a message was sent. A failed reply
// is replaced by the fallback message.
func (v *View) Submit(ctx context.Context) bool {
	v.mu.Lock()
	text := v.inputText
	if strings.TrimSpace(text) == "" || v.loading {
		v.mu.Unlock()
		return false
	}
	v.loading = true
	v.inputText = ""
	v.mu.Unlock()

	user := v.session.Append(chat.Message{Type: chat.SenderUser, Text: text})
	v.render(user)
	v.println(thinkingMsg)

	reply, err := v.replier.Reply(ctx, text)
	if err != nil {
		log.Error().Err(err).Str("session_id", v.session.ID()).Msg("get reply")
		reply = chat.Message{Type: chat.SenderBot, Text: chat.FallbackReply, Sources: []chat.Source{}}
	}
	reply.Type = chat.SenderBot
	bot := v.session.Append(reply)
	v.render(bot)

	v.mu.Lock()
	v.loading = false
	autoSpeak := v.autoSpeak
	v.mu.Unlock()

	if autoSpeak {
		v.output.Speak(ctx, bot.Text)
	}
	return true
}

// ToggleMic starts or stops voice input.
func (v *View) ToggleMic(ctx context.Context) {
	wasRecording := v.input.Recording()
	if err := v.input.Toggle(ctx); err != nil {
		if errors.Is(err, speech.ErrRecognitionUnavailable) {
			v.println("Voice input is not available on this system.")
			return
		}
		log.Error().Err(err).Msg("toggle voice input")
		return
	}
	if wasRecording {
		v.println("🎤 stopped")
	} else {
		v.println("🎤 listening...")
	}
}

// SpeakLast reads the most recent bot message aloud.
func (v *View) SpeakLast(ctx context.Context) {
	if msg, ok := v.session.LastBot(); ok {
		v.output.Speak(ctx, msg.Text)
	}
}

// StopSpeaking cancels any playback.
func (v *View) StopSpeaking() {
	v.output.Stop()
}

// Handle processes one line typed by the user and reports whether the
// user asked to quit. An empty line sends a pending voice transcript; a
// line of only whitespace is ignored.
func (v *View) Handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" && line != "" {
		return false
	}
	if strings.HasPrefix(trimmed, "/") {
		return v.command(ctx, trimmed)
	}
	if trimmed != "" {
		v.SetInput(line)
	}
	v.Submit(ctx)
	return false
}

func (v *View) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true
	case "/mic":
		v.ToggleMic(ctx)
	case "/speak":
		if len(fields) < 2 {
			v.printf("auto-speak is %s\n", onOff(v.AutoSpeak()))
			return false
		}
		switch fields[1] {
		case "on":
			v.SetAutoSpeak(true)
		case "off":
			v.SetAutoSpeak(false)
			v.StopSpeaking()
		default:
			v.println("usage: /speak on|off")
			return false
		}
		v.printf("auto-speak is %s\n", onOff(v.AutoSpeak()))
	case "/say":
		v.SpeakLast(ctx)
	case "/stop":
		v.StopSpeaking()
	case "/history":
		v.showHistory(ctx)
	case "/session":
		v.println(v.session.ID())
	default:
		v.outMu.Lock()
		renderHelp(v.out)
		v.outMu.Unlock()
	}
	return false
}

func (v *View) showHistory(ctx context.Context) {
	messages := v.session.Messages()
	if v.history != nil {
		stored, err := v.history.LoadHistory(ctx)
		if err != nil {
			log.Error().Err(err).Str("session_id", v.session.ID()).Msg("load chat history")
			v.println("Could not load the stored conversation.")
			return
		}
		messages = stored
	}
	for _, msg := range messages {
		v.render(msg)
	}
}

// Run reads lines from in until EOF, /quit or ctx cancellation.
func (v *View) Run(ctx context.Context, in io.Reader) error {
	defer v.input.Stop()
	defer v.output.Stop()

	v.println("Type /help for commands.")
	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errCh
			}
			if v.Handle(ctx, line) {
				return nil
			}
		}
	}
}

func (v *View) onTranscript(text string) {
	v.SetInput(text)
	v.printf("🎤 %s\n   (press Enter to send)\n", text)
}

func (v *View) render(msg chat.Message) {
	v.outMu.Lock()
	defer v.outMu.Unlock()
	renderMessage(v.out, msg)
}

func (v *View) println(s string) {
	v.outMu.Lock()
	defer v.outMu.Unlock()
	fmt.Fprintln(v.out, s)
}

func (v *View) printf(format string, args ...any) {
	v.outMu.Lock()
	defer v.outMu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
