package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
)

const (
	asrEndpoint = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

	// 200ms of 16kHz 16 bit mono PCM.
	asrChunkSize     = 6400
	asrChunkInterval = 200 * time.Millisecond
)

// ASRClient transcribes complete audio clips over the Volcengine big model
// streaming-input API.
type ASRClient struct {
	config        *speechmodel.SpeechConfig
	dialer        *websocket.Dialer
	endpoint      string
	chunkInterval time.Duration
}

// NewASRClient creates an ASR client for cfg.
func NewASRClient(cfg *speechmodel.SpeechConfig) *ASRClient {
	return &ASRClient{
		config:        cfg,
		dialer:        &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		endpoint:      asrEndpoint,
		chunkInterval: asrChunkInterval,
	}
}

type asrRequestBody struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

type asrUtterance struct {
	Text     string `json:"text"`
	Definite bool   `json:"definite"`
}

type asrServerMessage struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string         `json:"text"`
		Utterances []asrUtterance `json:"utterances,omitempty"`
	} `json:"result,omitempty"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info,omitempty"`
}

// Transcribe uploads req.AudioData in real-time sized chunks while reading
// results, and returns the final transcript.
func (c *ASRClient) Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	if len(req.AudioData) == 0 {
		return nil, fmt.Errorf("no audio data to transcribe")
	}

	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	resourceID := "volc.bigasr.sauc.duration"
	if c.config.ConcurrentMode {
		resourceID = "volc.bigasr.sauc.concurrent"
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, authHeader(appID, token, resourceID, req.SessionID))
	if err != nil {
		return nil, fmt.Errorf("dial asr websocket: %w", err)
	}
	defer conn.Close()

	if resp != nil {
		if logID := resp.Header.Get("X-Tt-Logid"); logID != "" {
			log.Debug().Str("logid", logID).Msg("asr connected")
		}
	}

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal asr request: %w", err)
	}
	frame, err := NewFullClientRequest(body, GzipCompression)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(conn, frame); err != nil {
		return nil, fmt.Errorf("send asr request: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() { conn.Close() })
	defer stop()

	// The server may finalize before every chunk is sent.
	sendCtx, cancelSend := context.WithCancel(gctx)
	defer cancelSend()

	var result *speechmodel.ASRResponse
	g.Go(func() error {
		return c.sendAudio(sendCtx, conn, req.AudioData)
	})
	g.Go(func() error {
		var err error
		result, err = c.receive(conn, req.SessionID)
		if err == nil {
			cancelSend()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return result, nil
}

func (c *ASRClient) buildRequest(req *speechmodel.ASRRequest) *asrRequestBody {
	body := &asrRequestBody{}
	body.User.UID = req.SessionID

	body.Audio.Format = req.Format
	if body.Audio.Format == "" {
		body.Audio.Format = "wav"
	}
	body.Audio.Language = req.Language
	if body.Audio.Language == "" {
		body.Audio.Language = c.config.ASRLanguage
	}
	body.Audio.Codec = "raw"
	body.Audio.Rate = 16000
	body.Audio.Bits = 16
	body.Audio.Channel = 1

	body.Request.ModelName = "bigmodel"
	body.Request.EnableITN = true
	body.Request.EnablePunc = true
	body.Request.ShowUtterances = true
	body.Request.ResultType = "full"
	body.Request.EndWindowSize = 800
	return body
}

func (c *ASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, audio []byte) error {
	// The full client request takes sequence 1.
	sequence := int32(2)

	for start := 0; start < len(audio); start += asrChunkSize {
		end := min(start+asrChunkSize, len(audio))
		last := end == len(audio)

		frame, err := NewAudioRequest(audio[start:end], sequence, last, GzipCompression)
		if err != nil {
			return err
		}
		if err := writeFrame(conn, frame); err != nil {
			return fmt.Errorf("send audio chunk %d: %w", sequence, err)
		}
		if last {
			return nil
		}
		sequence++

		select {
		case <-ctx.Done():
			// Cancellation is reported by the receiving side.
			return nil
		case <-time.After(c.chunkInterval):
		}
	}
	return nil
}

func (c *ASRClient) receive(conn *websocket.Conn, sessionID string) (*speechmodel.ASRResponse, error) {
	var (
		text     string
		duration int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read asr response: %w", err)
		}

		frame, err := ParseFrame(data)
		if err != nil {
			return nil, fmt.Errorf("decode asr frame: %w", err)
		}

		payload, err := frame.Body()
		if err != nil {
			return nil, fmt.Errorf("decompress asr frame: %w", err)
		}

		switch frame.Type {
		case ErrorMessage:
			return nil, fmt.Errorf("asr error %d: %s", frame.ErrorCode, payload)

		case FullServerResponse:
			var msg asrServerMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				log.Warn().Err(err).Msg("asr: undecodable server message")
				continue
			}
			if msg.Code != 0 && msg.Code != 20000000 {
				return nil, fmt.Errorf("asr api error %d: %s", msg.Code, msg.Message)
			}

			if candidate := transcriptOf(msg); candidate != "" {
				text = candidate
			}
			if msg.AudioInfo.Duration > 0 {
				duration = msg.AudioInfo.Duration
			}

			if frame.Final() || msg.Sequence < 0 {
				confidence := 0.0
				if strings.TrimSpace(text) != "" {
					confidence = 0.95
				}
				return &speechmodel.ASRResponse{
					SessionID:  sessionID,
					Text:       text,
					Confidence: confidence,
					Duration:   duration,
					RequestID:  sessionID,
					CreatedAt:  time.Now(),
				}, nil
			}
		}
	}
}

func transcriptOf(msg asrServerMessage) string {
	if msg.Result.Text != "" {
		return msg.Result.Text
	}
	parts := make([]string, 0, len(msg.Result.Utterances))
	for _, u := range msg.Result.Utterances {
		if u.Text != "" {
			parts = append(parts, u.Text)
		}
	}
	return strings.Join(parts, " ")
}

func writeFrame(conn *websocket.Conn, frame *Frame) error {
	wire, err := frame.MarshalBinary()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, wire)
}
