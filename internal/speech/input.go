// Package speech gives the chat view voice input and output. Recognition
// and synthesis are capabilities behind small interfaces; the Volcengine
// adapters in this package back them with the speech service.
package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultLocale is the recognition locale used when none is configured.
const DefaultLocale = "hi-IN"

// ErrRecognitionUnavailable is returned when no recognizer can run.
var ErrRecognitionUnavailable = errors.New("speech recognition is not available")

// Recognizer captures one utterance and returns its transcript. It blocks
// until a result is available or ctx is cancelled.
type Recognizer interface {
	Available() bool
	Recognize(ctx context.Context, locale string) (string, error)
}

// State is the recording state of an Input.
type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "idle"
}

type event int

const (
	eventStart event = iota
	eventStop
	eventResult
	eventError
	eventEnd
)

// transitions lists every legal move; pairs not listed leave the state as is.
var transitions = map[State]map[event]State{
	StateIdle: {
		eventStart: StateRecording,
	},
	StateRecording: {
		eventStart:  StateRecording,
		eventStop:   StateIdle,
		eventResult: StateIdle,
		eventError:  StateIdle,
		eventEnd:    StateIdle,
	},
}

func next(s State, e event) State {
	if to, ok := transitions[s][e]; ok {
		return to
	}
	return s
}

// Input turns spoken words into text for the input field.
type Input struct {
	recognizer Recognizer
	locale     string
	onResult   func(string)

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInput creates an idle input. onResult receives each transcript.
func NewInput(recognizer Recognizer, locale string, onResult func(string)) *Input {
	if locale == "" {
		locale = DefaultLocale
	}
	return &Input{recognizer: recognizer, locale: locale, onResult: onResult}
}

// State returns the current state.
func (in *Input) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Recording reports whether a recognition is in progress.
func (in *Input) Recording() bool {
	return in.State() == StateRecording
}

// Toggle starts recording when idle and stops it when recording.
func (in *Input) Toggle(ctx context.Context) error {
	if in.Recording() {
		in.Stop()
		return nil
	}
	return in.Start(ctx)
}

// Start begins a recognition. It is a no-op while already recording.
func (in *Input) Start(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.state == StateRecording {
		return nil
	}
	if in.recognizer == nil || !in.recognizer.Available() {
		return ErrRecognitionUnavailable
	}

	rctx, cancel := context.WithCancel(ctx)
	in.gen++
	in.cancel = cancel
	in.state = next(in.state, eventStart)

	in.wg.Add(1)
	go in.run(rctx, in.gen)
	return nil
}

// Stop ends the current recognition and discards its result.
func (in *Input) Stop() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.cancel != nil {
		in.cancel()
		in.cancel = nil
	}
	in.state = next(in.state, eventStop)
}

// Wait blocks until no recognition goroutine is running.
func (in *Input) Wait() {
	in.wg.Wait()
}

func (in *Input) run(ctx context.Context, gen uint64) {
	defer in.wg.Done()

	text, err := in.recognizer.Recognize(ctx, in.locale)

	ev := eventResult
	switch {
	case ctx.Err() != nil:
		ev = eventEnd
	case err != nil:
		ev = eventError
		log.Error().Err(err).Msg("speech recognition failed")
	case text == "":
		ev = eventEnd
	}

	in.mu.Lock()
	if gen != in.gen || in.state != StateRecording {
		in.mu.Unlock()
		return
	}
	in.state = next(in.state, ev)
	if in.cancel != nil {
		in.cancel()
		in.cancel = nil
	}
	in.mu.Unlock()

	if ev == eventResult && in.onResult != nil {
		in.onResult(text)
	}
}
