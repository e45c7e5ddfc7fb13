package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
	"github.com/shetkarimitra/advisor/internal/client"
	"github.com/shetkarimitra/advisor/internal/config"
	"github.com/shetkarimitra/advisor/internal/logging"
	"github.com/shetkarimitra/advisor/internal/session"
	speechsvc "github.com/shetkarimitra/advisor/internal/service/speech"
	"github.com/shetkarimitra/advisor/internal/speech"
	"github.com/shetkarimitra/advisor/internal/storage/local"
	"github.com/shetkarimitra/advisor/internal/view"
)

type flags struct {
	mock      bool
	autoSpeak bool
	backend   string
	stateDir  string
}

func main() {
	_ = godotenv.Load()

	var f flags
	root := &cobra.Command{
		Use:   "chat",
		Short: "शेतकरी मित्र: chat with the farm advisor",
		Long:  "Ask farming questions in Marathi, Hindi or English from the terminal, by keyboard or voice.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, f)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&f.mock, "mock", false, "answer from the offline catalog instead of the backend")
	root.PersistentFlags().BoolVar(&f.autoSpeak, "auto-speak", false, "read every reply aloud")
	root.PersistentFlags().StringVar(&f.backend, "backend", "", "advisory backend base URL (default $SHETKARI_BACKEND_URL)")
	root.PersistentFlags().StringVar(&f.stateDir, "state-dir", "", "directory for the session id and log (default $SHETKARI_STATE_DIR)")

	root.AddCommand(sessionCmd(&f))
	root.AddCommand(historyCmd(&f))

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func sessionCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the session id of this profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			id, err := loadSessionID(cfg.Client)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func historyCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the conversation stored by the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			id, err := loadSessionID(cfg.Client)
			if err != nil {
				return err
			}

			messages, err := client.New(cfg.Client.BackendURL).LoadHistory(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, msg := range messages {
				fmt.Fprintf(out, "[%s] %s: %s\n", msg.Timestamp.Local().Format("15:04"), msg.Type, msg.Text)
			}
			return nil
		},
	}
}

// loadConfig reads the environment, applies explicitly set flags and
// points the logger at the state directory.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("mock") {
		cfg.Client.MockMode = f.mock
	}
	if set("auto-speak") {
		cfg.Client.AutoSpeak = f.autoSpeak
	}
	if set("backend") {
		cfg.Client.BackendURL = strings.TrimRight(f.backend, "/")
	}
	if set("state-dir") {
		cfg.Client.StateDir = f.stateDir
	}

	if err := os.MkdirAll(cfg.Client.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.Client.StateDir, "chat.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Output: logFile})

	return cfg, nil
}

func loadSessionID(cfg config.ClientConfig) (string, error) {
	kv, err := local.Open(filepath.Join(cfg.StateDir, "state.json"))
	if err != nil {
		return "", err
	}
	return session.LoadOrCreateID(kv)
}

func runChat(cmd *cobra.Command, f flags) error {
	full, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	cfg := full.Client

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id, err := loadSessionID(cfg)
	if err != nil {
		return err
	}

	opts := view.Options{
		Session:   session.New(id),
		Locale:    cfg.RecognitionLocale,
		AutoSpeak: cfg.AutoSpeak,
		Out:       cmd.OutOrStdout(),
	}

	if cfg.MockMode {
		selector, err := advisory.OpenSelector(cfg.MockCatalog)
		if err != nil {
			return err
		}
		opts.Replier = view.MockReplier{Selector: selector, Delay: cfg.MockDelay}
		log.Info().Str("session_id", id).Msg("starting chat in offline mode")
	} else {
		remote := view.RemoteReplier{Client: client.New(cfg.BackendURL), SessionID: id}
		opts.Replier = remote
		opts.History = remote
		log.Info().Str("session_id", id).Str("backend", cfg.BackendURL).Msg("starting chat")
	}

	if full.Speech.Enabled {
		svc := speechsvc.NewService(full.Speech.Model())
		opts.Recognizer = speech.NewVolcengineRecognizer(svc, cfg.RecordCommand)
		opts.Synthesizer = speech.NewVolcengineSynthesizer(svc, cfg.PlayerCommand)
	} else {
		log.Info().Msg("speech credentials not configured, voice input and output disabled")
	}

	v := view.New(opts)
	fmt.Fprintln(cmd.OutOrStdout(), "🌾 शेतकरी मित्र | Your Trusted Farm Advisor")
	v.Init(ctx)
	return v.Run(ctx, cmd.InOrStdin())
}
