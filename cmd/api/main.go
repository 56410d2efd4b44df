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
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/config"
	"github.com/zhouzirui/shree/backend/internal/handler"
	"github.com/zhouzirui/shree/backend/internal/logging"
	"github.com/zhouzirui/shree/backend/internal/model/persona"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
	"github.com/zhouzirui/shree/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{App: "shree"})
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Log)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("failed to load .env file, continuing with system environment variables only")
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	if _, ok := personaStore.FindByID(cfg.Assistant.PersonaID); !ok {
		logger.Fatal().Str("persona", cfg.Assistant.PersonaID).Msg("configured persona does not exist")
	}

	// Browsers speak through the WebSocket bridge; each session gets its own.
	manager := assistant.NewManager(personaStore, assistant.ManagerConfig{
		Speech: cfg.Speech.Playback,
		Seed:   cfg.Assistant.Seed,
		Engines: func(sessionID string) speech.Engine {
			return speech.NewRemoteEngine(logger.With().Str("session", sessionID).Logger())
		},
	}, logger)
	defer manager.Close()

	router := handler.NewRouter(personaStore, manager, handler.RouterConfig{CORSOrigin: cfg.Server.CORSOrigin}, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger zerolog.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("shree backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Error().Err(err).Msg("server error")
		return
	}
	logger.Info().Msg("server stopped")
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
