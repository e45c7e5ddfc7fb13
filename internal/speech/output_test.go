package speech

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	mu        sync.Mutex
	spoken    []Utterance
	cancelled int
	started   chan struct{}
	block     bool
}

func (s *fakeSynth) Speak(ctx context.Context, u Utterance) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if !s.block {
		return nil
	}
	<-ctx.Done()
	s.mu.Lock()
	s.cancelled++
	s.mu.Unlock()
	return ctx.Err()
}

func TestUtteranceFor(t *testing.T) {
	hi := UtteranceFor("टोमॅटो पिकासाठी सल्ला")
	assert.Equal(t, LocaleHindi, hi.Locale)
	assert.Equal(t, Rate, hi.Rate)
	assert.Equal(t, Pitch, hi.Pitch)

	en := UtteranceFor("Use neem oil")
	assert.Equal(t, LocaleEnglish, en.Locale)
}

func TestOutputSpeakCompletes(t *testing.T) {
	synth := &fakeSynth{}
	out := NewOutput(synth)

	out.Speak(context.Background(), "hello")
	out.Wait()

	assert.False(t, out.Speaking())
	require.Len(t, synth.spoken, 1)
	assert.Equal(t, "hello", synth.spoken[0].Text)
}

func TestOutputSpeakCancelsPrevious(t *testing.T) {
	synth := &fakeSynth{block: true, started: make(chan struct{}, 2)}
	out := NewOutput(synth)
	ctx := context.Background()

	out.Speak(ctx, "first")
	<-synth.started
	assert.True(t, out.Speaking())

	out.Speak(ctx, "दुसरा")
	<-synth.started
	assert.True(t, out.Speaking())

	out.Stop()
	out.Wait()

	assert.False(t, out.Speaking())
	assert.Equal(t, 2, synth.cancelled)
	assert.Equal(t, LocaleHindi, synth.spoken[1].Locale)
}

func TestOutputStopWhenIdle(t *testing.T) {
	out := NewOutput(&fakeSynth{})
	out.Stop()
	assert.False(t, out.Speaking())
}

func TestVolcengineRecognizerUnavailableWithoutService(t *testing.T) {
	rec := NewVolcengineRecognizer(nil, "arecord -q")
	assert.False(t, rec.Available())

	_, err := rec.Recognize(context.Background(), DefaultLocale)
	assert.ErrorIs(t, err, ErrRecognitionUnavailable)
}
