package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/assistentes/backend/internal/config"
	"github.com/zhouzirui/assistentes/backend/internal/handler"
	"github.com/zhouzirui/assistentes/backend/internal/logging"
	"github.com/zhouzirui/assistentes/backend/internal/model/persona"
	"github.com/zhouzirui/assistentes/backend/internal/service/ai"
	"github.com/zhouzirui/assistentes/backend/internal/service/chat"
	"github.com/zhouzirui/assistentes/backend/internal/service/history"
	"github.com/zhouzirui/assistentes/backend/pkg/markdown"
	"github.com/zhouzirui/assistentes/backend/web"
)

func serveCmd() *cobra.Command {
	var port, logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, port, logLevel)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	return cmd
}

func serve(ctx context.Context, port, logLevel string) error {
	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		if cfg.Server.Addr, err = config.ParseAddr(port); err != nil {
			return err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, using system environment only")
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	store, err := openHistory(ctx, cfg.History)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close history store")
			}
		}()
	}

	generator, err := ai.NewGenerator(ctx, cfg.AI, &http.Client{})
	if err != nil {
		// Keep serving without a provider; chat requests answer 500.
		log.Warn().Err(err).Str("provider", string(cfg.AI.Provider)).Msg("AI provider unavailable, chat requests will fail")
		generator = nil
	} else {
		log.Info().Str("provider", string(cfg.AI.Provider)).Msg("AI provider initialized")
	}

	chatService := chat.NewService(personaStore, history.Instrument(store, history.Backend(cfg.History.Backend)), generator, markdown.NewRenderer(), chat.Options{
		RequireSessionID: cfg.Server.RequireSessionID,
		Timeout:          cfg.AI.Timeout,
	})

	router := handler.NewRouter(personaStore, chatService, handler.Options{
		Logger:         log.Logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Static:         web.FS(),
	})

	return startServer(ctx, cfg.Server, router)
}

// openHistory builds the session store and starts its janitor when sessions expire.
func openHistory(ctx context.Context, cfg config.HistoryConfig) (history.Store, error) {
	store, err := history.NewStore(ctx, history.Config{
		Backend: history.Backend(cfg.Backend),
		DSN:     cfg.DSN,
		DBName:  cfg.DBName,
		TTL:     cfg.TTL,
	})
	if err != nil {
		return nil, err
	}

	// redis expires keys on its own and does not implement Sweeper.
	if sweeper, ok := store.(history.Sweeper); ok && cfg.TTL > 0 {
		go history.RunJanitor(ctx, sweeper, cfg.TTL)
	}

	log.Info().Str("backend", cfg.Backend).Dur("ttl", cfg.TTL).Msg("history store ready")
	return store, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("assistentes backend listening")
	return runServer(ctx, srv)
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
