package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
	speechsvc "github.com/shetkarimitra/advisor/internal/service/speech"
)

// VolcengineRecognizer records a clip with an external command and
// transcribes it with the Volcengine ASR service.
type VolcengineRecognizer struct {
	service *speechsvc.Service
	command []string
}

// NewVolcengineRecognizer returns a recognizer that runs recordCommand
// (split on whitespace) and reads WAV audio from its stdout.
func NewVolcengineRecognizer(service *speechsvc.Service, recordCommand string) *VolcengineRecognizer {
	return &VolcengineRecognizer{service: service, command: strings.Fields(recordCommand)}
}

// Available reports whether the service is configured and the recorder
// binary can be found.
func (r *VolcengineRecognizer) Available() bool {
	if r.service == nil || len(r.command) == 0 {
		return false
	}
	_, err := exec.LookPath(r.command[0])
	return err == nil
}

// Recognize records one clip and returns its transcript.
func (r *VolcengineRecognizer) Recognize(ctx context.Context, locale string) (string, error) {
	if !r.Available() {
		return "", ErrRecognitionUnavailable
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Stderr = &stderr
	audio, err := cmd.Output()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("record audio: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if len(audio) == 0 {
		return "", errors.New("recorder produced no audio")
	}

	resp, err := r.service.Transcribe(ctx, &speechmodel.ASRRequest{
		AudioData: audio,
		Format:    "wav",
		Language:  locale,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// VolcengineSynthesizer renders speech with the Volcengine TTS service and
// pipes the mp3 into an external player.
type VolcengineSynthesizer struct {
	service *speechsvc.Service
	command []string
}

// NewVolcengineSynthesizer returns a synthesizer that plays audio through
// playerCommand (split on whitespace), fed on stdin.
func NewVolcengineSynthesizer(service *speechsvc.Service, playerCommand string) *VolcengineSynthesizer {
	return &VolcengineSynthesizer{service: service, command: strings.Fields(playerCommand)}
}

// Speak synthesizes u and plays it to completion.
func (s *VolcengineSynthesizer) Speak(ctx context.Context, u Utterance) error {
	if s.service == nil || len(s.command) == 0 {
		return errors.New("speech synthesis is not configured")
	}

	resp, err := s.service.Synthesize(ctx, &speechmodel.TTSRequest{
		Text:     u.Text,
		Voice:    s.service.Voice(u.Locale == LocaleHindi),
		Speed:    u.Rate,
		Pitch:    u.Pitch,
		Format:   "mp3",
		Language: u.Locale,
	})
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Stdin = bytes.NewReader(resp.AudioData)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}
