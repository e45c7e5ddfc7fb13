package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
)

func TestResourceCandidates(t *testing.T) {
	tests := []struct {
		name    string
		speaker string
		want    []string
	}{
		{name: "clone voice", speaker: "S_clone_speaker", want: []string{"volc.megatts.default"}},
		{name: "bigtts voice", speaker: "hi_female_sweet_mars_bigtts", want: []string{"seed-tts-2.0", "volc.service_type.10029"}},
		{name: "legacy voice", speaker: "BV001_streaming", want: []string{"volc.service_type.10029", "seed-tts-2.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resourceCandidates(tt.speaker))
		})
	}
}

func TestRatioToRate(t *testing.T) {
	assert.Equal(t, 0, ratioToRate(0))
	assert.Equal(t, 0, ratioToRate(1))
	assert.Equal(t, -10, ratioToRate(0.9))
	assert.Equal(t, -50, ratioToRate(0.2))
	assert.Equal(t, 100, ratioToRate(3))
}

func TestBuildRequestUsesSessionAndRate(t *testing.T) {
	client := NewTTSClient(&speechmodel.SpeechConfig{TTSVolume: 0.8})
	body := client.buildRequest(&speechmodel.TTSRequest{
		SessionID: "session-1",
		Text:      "नमस्कार",
		Speed:     0.9,
		Pitch:     1,
		Language:  "hi-IN",
	}, "hi_female_sweet_mars_bigtts")

	assert.Equal(t, "session-1", body.User.UID)
	assert.Equal(t, "hi_female_sweet_mars_bigtts", body.ReqParams.Speaker)
	assert.Equal(t, "mp3", body.ReqParams.AudioParams.Format)
	assert.Equal(t, -10, body.ReqParams.AudioParams.SpeechRate)
	assert.Equal(t, 0, body.ReqParams.AudioParams.PitchRate)
	assert.InDelta(t, 0.8, body.ReqParams.AudioParams.VolumeRatio, 0.001)
}

func TestSynthesizeRequiresCredentials(t *testing.T) {
	client := NewTTSClient(&speechmodel.SpeechConfig{})
	_, err := client.Synthesize(t.Context(), &speechmodel.TTSRequest{Text: "hello", Voice: "v"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
