package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shetkarimitra/advisor/internal/analysis/advisory"
	"github.com/shetkarimitra/advisor/internal/config"
	"github.com/shetkarimitra/advisor/internal/handler"
	"github.com/shetkarimitra/advisor/internal/logging"
	"github.com/shetkarimitra/advisor/internal/service/ai"
	"github.com/shetkarimitra/advisor/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.Options{})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(logging.Options{Level: cfg.LogLevel})
	if envErr != nil {
		log.Warn().Err(envErr).Msg("no .env file loaded, continuing with system environment variables only")
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open chat store")
	}
	defer store.Close()

	responder, responderName, err := newResponder(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize responder")
	}

	chatService := chat.NewService(store, responder)
	router := handler.NewRouter(logger, chatService, handler.Info{
		Responder: responderName,
		Store:     cfg.Store.Driver,
	})

	startServer(ctx, cfg.Server, router)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (chat.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return chat.NewSQLiteStore(ctx, cfg.SQLitePath)
	case "redis":
		return chat.NewRedisStore(ctx, cfg.RedisURL)
	default:
		return chat.NewMemoryStore(), nil
	}
}

// newResponder prefers the Ark model and falls back to the offline catalog.
func newResponder(ctx context.Context, cfg *config.Config) (chat.Responder, string, error) {
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err == nil {
			var advisor *ai.Advisor
			advisor, err = ai.NewAdvisor(ctx, chatModel)
			if err == nil {
				log.Info().Str("model", cfg.AI.Model).Msg("AI advisor initialized")
				return advisor, "ark", nil
			}
		}
		log.Warn().Err(err).Msg("failed to initialize AI advisor, answering from the offline catalog")
	} else {
		log.Info().Msg("Ark credentials not configured, answering from the offline catalog")
	}

	selector, err := advisory.OpenSelector(cfg.Client.MockCatalog)
	if err != nil {
		return nil, "", err
	}
	return ai.NewCatalogResponder(selector), "catalog", nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("Shetkari Mitra backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
