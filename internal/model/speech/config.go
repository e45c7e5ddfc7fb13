package speech

import "time"

// SpeechConfig holds the Volcengine speech credentials and voice selection.
type SpeechConfig struct {
	AppID       string `json:"appId"`
	AccessToken string `json:"accessToken"`
	// ConcurrentMode selects the concurrent ASR resource instead of the
	// duration billed one.
	ConcurrentMode bool `json:"concurrentMode"`

	ASRLanguage string `json:"asrLanguage"`

	VoiceHindi   string  `json:"voiceHindi"`
	VoiceEnglish string  `json:"voiceEnglish"`
	TTSVolume    float32 `json:"ttsVolume"`

	Timeout time.Duration `json:"timeout"`
}
