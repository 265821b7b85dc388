package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/bot"
	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the Telegram bot when a token is configured)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create completion backend: %w", err)
	}
	svc := completion.NewClient(gen, logger)

	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	p := newPipeline(svc, store, cfg, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	botDone := make(chan error, 1)
	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, p, store, logger)
		if err != nil {
			return err
		}
		go func() { botDone <- b.Start(ctx) }()
	} else {
		logger.Info("Telegram token not set, bot disabled")
		close(botDone)
	}

	srv := server.NewServer(p, store, logger,
		server.WithCORSOrigins(cfg.Server.CORSOrigins),
		server.WithBodyLimit(cfg.Server.BodyLimitBytes),
		server.WithRateLimit(cfg.Server.RateLimitRPM),
	)
	err = srv.Run(ctx, cfg.Server.Addr)

	cancel()
	if botErr := <-botDone; botErr != nil {
		logger.Error("Bot error", zap.Error(botErr))
	}
	return err
}
