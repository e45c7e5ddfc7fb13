package speech

// ASRRequest asks for a transcript of a complete audio clip.
type ASRRequest struct {
	SessionID string `json:"sessionId"`
	AudioData []byte `json:"-"`
	Format    string `json:"format"`   // wav, pcm, mp3
	Language  string `json:"language"` // hi-IN, mr-IN, en-IN
}

// TTSRequest asks for the audio rendition of a text.
type TTSRequest struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`
	Pitch     float32 `json:"pitch"`
	Format    string  `json:"format"`
	Language  string  `json:"language"`
}
