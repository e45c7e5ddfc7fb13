// Package speech talks to the Volcengine speech recognition and synthesis
// websocket APIs.
package speech

import (
	"context"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
)

// Service bundles the ASR and TTS clients behind one configuration.
type Service struct {
	config *speechmodel.SpeechConfig
	tts    *TTSClient
	asr    *ASRClient
}

// NewService creates a speech service for cfg.
func NewService(cfg *speechmodel.SpeechConfig) *Service {
	return &Service{
		config: cfg,
		tts:    NewTTSClient(cfg),
		asr:    NewASRClient(cfg),
	}
}

// Transcribe converts an audio clip to text.
func (s *Service) Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.asr.Transcribe(ctx, req)
}

// Synthesize converts text to mp3 audio.
func (s *Service) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.tts.Synthesize(ctx, req)
}

// Voice returns the configured voice for a Hindi/Marathi or English utterance.
func (s *Service) Voice(devanagari bool) string {
	if devanagari {
		return s.config.VoiceHindi
	}
	return s.config.VoiceEnglish
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}
