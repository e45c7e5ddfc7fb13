package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
)

const ttsEndpoint = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

var errResourceMismatch = errors.New("resource id does not match speaker")

// TTSClient synthesizes speech over the Volcengine unidirectional stream API.
type TTSClient struct {
	config   *speechmodel.SpeechConfig
	dialer   *websocket.Dialer
	endpoint string
}

// NewTTSClient creates a TTS client for cfg.
func NewTTSClient(cfg *speechmodel.SpeechConfig) *TTSClient {
	return &TTSClient{
		config:   cfg,
		dialer:   &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		endpoint: ttsEndpoint,
	}
}

type ttsRequestBody struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string        `json:"speaker"`
		Text        string        `json:"text"`
		AudioParams ttsAudioParam `json:"audio_params"`
		Language    string        `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsAudioParam struct {
	Format      string  `json:"format"`
	SampleRate  int     `json:"sample_rate"`
	SpeechRate  int     `json:"speech_rate,omitempty"`
	PitchRate   int     `json:"pitch_rate,omitempty"`
	VolumeRatio float32 `json:"volume_ratio,omitempty"`
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

// Synthesize renders req.Text to mp3 audio. Resource ids are tried in order
// until the service accepts one for the speaker.
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("tts text is empty")
	}

	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	speaker := strings.TrimSpace(req.Voice)
	if speaker == "" {
		return nil, fmt.Errorf("tts voice is empty")
	}

	var lastErr error
	for _, resourceID := range resourceCandidates(speaker) {
		resp, err := c.synthesizeWith(ctx, req, appID, token, speaker, resourceID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, errResourceMismatch) {
			return nil, err
		}
		log.Debug().Str("speaker", speaker).Str("resource_id", resourceID).Msg("tts resource mismatch, trying next")
		lastErr = err
	}
	return nil, lastErr
}

func (c *TTSClient) synthesizeWith(ctx context.Context, req *speechmodel.TTSRequest, appID, token, speaker, resourceID string) (*speechmodel.TTSResponse, error) {
	connectID := uuid.NewString()
	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, authHeader(appID, token, resourceID, connectID))
	if err != nil {
		return nil, fmt.Errorf("dial tts websocket: %w", err)
	}
	defer conn.Close()

	if resp != nil {
		if logID := resp.Header.Get("X-Tt-Logid"); logID != "" {
			log.Debug().Str("logid", logID).Msg("tts connected")
		}
	}

	// Closing the connection unblocks ReadMessage when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	body, err := json.Marshal(c.buildRequest(req, speaker))
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}
	frame, err := NewFullClientRequest(body, NoCompression)
	if err != nil {
		return nil, err
	}
	wire, err := frame.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, wire); err != nil {
		return nil, fmt.Errorf("send tts request: %w", err)
	}

	var (
		audio    bytes.Buffer
		reqID    string
		duration int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read tts response: %w", err)
		}

		frame, err := ParseFrame(data)
		if err != nil {
			return nil, fmt.Errorf("decode tts frame: %w", err)
		}

		payload, err := frame.Body()
		if err != nil {
			return nil, fmt.Errorf("decompress tts frame: %w", err)
		}

		switch frame.Type {
		case ErrorMessage:
			if strings.Contains(string(payload), "resource ID is mismatched") {
				return nil, fmt.Errorf("%w: %s", errResourceMismatch, payload)
			}
			return nil, fmt.Errorf("tts error %d: %s", frame.ErrorCode, payload)

		case AudioOnlyServerResponse:
			audio.Write(payload)

		case FullServerResponse:
			var msg ttsServerMessage
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &msg); err != nil {
					log.Warn().Err(err).Msg("tts: undecodable server message")
				}
			}
			if msg.Code != 0 && msg.Code != 3000 {
				return nil, fmt.Errorf("tts api error %d: %s", msg.Code, msg.Message)
			}
			if msg.ReqID != "" {
				reqID = msg.ReqID
			}
			if msg.Addition.Duration != "" {
				if ms, err := strconv.ParseInt(msg.Addition.Duration, 10, 64); err == nil {
					duration = ms
				}
			}
			if msg.Data != "" {
				chunk, err := base64.StdEncoding.DecodeString(msg.Data)
				if err != nil {
					return nil, fmt.Errorf("decode tts audio chunk: %w", err)
				}
				audio.Write(chunk)
			}

			if frame.Final() || msg.Sequence < 0 {
				if audio.Len() == 0 {
					return nil, fmt.Errorf("tts returned no audio")
				}
				if reqID == "" {
					reqID = connectID
				}
				return &speechmodel.TTSResponse{
					SessionID: req.SessionID,
					AudioData: audio.Bytes(),
					Duration:  duration,
					Format:    "mp3",
					RequestID: reqID,
					CreatedAt: time.Now(),
				}, nil
			}
		}
	}
}

func (c *TTSClient) buildRequest(req *speechmodel.TTSRequest, speaker string) *ttsRequestBody {
	body := &ttsRequestBody{}

	body.User.UID = req.SessionID
	if body.User.UID == "" {
		body.User.UID = uuid.NewString()
	}

	body.ReqParams.Speaker = speaker
	body.ReqParams.Text = req.Text
	body.ReqParams.Language = req.Language
	body.ReqParams.AudioParams = ttsAudioParam{
		Format:     "mp3",
		SampleRate: 24000,
		SpeechRate: ratioToRate(req.Speed),
		PitchRate:  ratioToRate(req.Pitch),
	}
	if v := c.config.TTSVolume; v > 0 && v != 1.0 {
		body.ReqParams.AudioParams.VolumeRatio = v
	}
	return body
}

// ratioToRate maps a 0.5..2.0 multiplier onto the service's -50..100 scale,
// where 0 is the normal speed.
func ratioToRate(ratio float32) int {
	if ratio <= 0 || ratio == 1 {
		return 0
	}
	rate := int((ratio - 1) * 100)
	if rate < -50 {
		rate = -50
	}
	if rate > 100 {
		rate = 100
	}
	return rate
}

func resourceCandidates(speaker string) []string {
	const (
		legacyResource = "volc.service_type.10029"
		cloneResource  = "volc.megatts.default"
		seedResource   = "seed-tts-2.0"
	)

	if strings.HasPrefix(speaker, "S_") {
		return []string{cloneResource}
	}

	normalized := strings.ToLower(speaker)
	for _, hint := range []string{"bigtts", "seed", "megatts", "uranus", "venus", "jupiter", "mars"} {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, legacyResource}
		}
	}
	return []string{legacyResource, seedResource}
}
