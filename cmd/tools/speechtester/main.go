// Command speechtester exercises the Volcengine speech clients against the
// live service: transcribe a recorded clip or synthesize a sentence.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
	"github.com/shetkarimitra/advisor/internal/config"
	"github.com/shetkarimitra/advisor/internal/logging"
	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
	"github.com/shetkarimitra/advisor/internal/service/speech"
	clientspeech "github.com/shetkarimitra/advisor/internal/speech"
)

func main() {
	_ = godotenv.Load()
	logging.Setup(logging.Options{Level: os.Getenv("LOG_LEVEL")})

	var timeout time.Duration
	root := &cobra.Command{
		Use:          "speechtester",
		Short:        "Check Volcengine speech credentials and voices",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 45*time.Second, "request timeout")

	root.AddCommand(asrCmd(&timeout), ttsCmd(&timeout))

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newService() (*speech.Service, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Speech.Enabled {
		return nil, nil, errors.New("speech is not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
	}
	return speech.NewService(cfg.Speech.Model()), cfg, nil
}

func asrCmd(timeout *time.Duration) *cobra.Command {
	var format, language string
	cmd := &cobra.Command{
		Use:   "asr <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := newService()
			if err != nil {
				return err
			}

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read audio: %w", err)
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(args[0])), ".")
			}
			if language == "" {
				language = cfg.Speech.ASRLanguage
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), *timeout)
			defer cancel()

			start := time.Now()
			resp, err := svc.Transcribe(ctx, &speechmodel.ASRRequest{
				SessionID: fmt.Sprintf("manual-%d", start.UnixNano()),
				AudioData: audio,
				Format:    format,
				Language:  language,
			})
			if err != nil {
				return err
			}

			log.Info().Str("request_id", resp.RequestID).Dur("elapsed", time.Since(start)).Msg("transcribed")
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "audio format (default: file extension)")
	cmd.Flags().StringVar(&language, "lang", "", "recognition language (default: SPEECH_ASR_LANGUAGE)")
	return cmd
}

func ttsCmd(timeout *time.Duration) *cobra.Command {
	var out, voice string
	cmd := &cobra.Command{
		Use:   "tts <text>",
		Short: "Synthesize text to an mp3 file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			utterance := clientspeech.UtteranceFor(text)
			if voice == "" {
				voice = svc.Voice(advisory.ContainsDevanagari(text))
			}
			if out == "" {
				out = fmt.Sprintf("tts-%d.mp3", time.Now().Unix())
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), *timeout)
			defer cancel()

			start := time.Now()
			resp, err := svc.Synthesize(ctx, &speechmodel.TTSRequest{
				SessionID: fmt.Sprintf("manual-%d", start.UnixNano()),
				Text:      text,
				Voice:     voice,
				Speed:     utterance.Rate,
				Pitch:     utterance.Pitch,
				Format:    "mp3",
				Language:  utterance.Locale,
			})
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, resp.AudioData, 0o644); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
			log.Info().Str("voice", voice).Int("bytes", len(resp.AudioData)).Dur("elapsed", time.Since(start)).Msg("synthesized")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default tts-<unix>.mp3)")
	cmd.Flags().StringVar(&voice, "voice", "", "voice id (default: by script of the text)")
	return cmd
}
