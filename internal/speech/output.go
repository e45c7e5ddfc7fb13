package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
)

const (
	Rate  float32 = 0.9
	Pitch float32 = 1.0

	LocaleHindi   = "hi-IN"
	LocaleEnglish = "en-IN"
)

// Utterance is one piece of text to be spoken.
type Utterance struct {
	Text   string
	Locale string
	Rate   float32
	Pitch  float32
}

// UtteranceFor picks the voice locale from the script of text.
func UtteranceFor(text string) Utterance {
	locale := LocaleEnglish
	if advisory.ContainsDevanagari(text) {
		locale = LocaleHindi
	}
	return Utterance{Text: text, Locale: locale, Rate: Rate, Pitch: Pitch}
}

// Synthesizer speaks an utterance, blocking until playback ends or ctx is
// cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// Output reads messages aloud, one at a time.
type Output struct {
	synth Synthesizer

	mu       sync.Mutex
	speaking bool
	gen      uint64
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewOutput wraps a synthesizer.
func NewOutput(synth Synthesizer) *Output {
	return &Output{synth: synth}
}

// Speak cancels any utterance in flight and starts reading text.
func (o *Output) Speak(ctx context.Context, text string) {
	if o.synth == nil || text == "" {
		return
	}

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	o.gen++
	gen := o.gen
	o.cancel = cancel
	o.speaking = true
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()

		err := o.synth.Speak(sctx, UtteranceFor(text))
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("speech synthesis failed")
		}

		o.mu.Lock()
		if gen == o.gen {
			o.speaking = false
			o.cancel = nil
		}
		o.mu.Unlock()
	}()
}

// Stop cancels the current utterance, if any.
func (o *Output) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.gen++
	o.speaking = false
}

// Speaking reports whether an utterance is playing.
func (o *Output) Speaking() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.speaking
}

// Wait blocks until every started utterance goroutine has returned.
func (o *Output) Wait() {
	o.wg.Wait()
}
