package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flockrhq/flockr/internal/api"
	"github.com/flockrhq/flockr/internal/auth"
	"github.com/flockrhq/flockr/internal/channels"
	"github.com/flockrhq/flockr/internal/config"
	"github.com/flockrhq/flockr/internal/messages"
	"github.com/flockrhq/flockr/internal/metrics"
	"github.com/flockrhq/flockr/internal/ratelimit"
	"github.com/flockrhq/flockr/internal/sched"
	"github.com/flockrhq/flockr/internal/standup"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
	"github.com/flockrhq/flockr/internal/users"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Flockr server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	st := store.New()
	codec := token.NewCodec(cfg.Auth.TokenSecret)
	scheduler := sched.New()

	m := metrics.New(scheduler.Pending)
	limiter := ratelimit.New(cfg.RateLimit.Default, cfg.RateLimit.Window)

	router := api.NewRouter(api.RouterDeps{
		Store:          st,
		Auth:           auth.NewService(st, codec),
		Channels:       channels.NewService(st, codec),
		Messages:       messages.NewService(st, codec, scheduler),
		Users:          users.NewService(st, codec),
		Standup:        standup.NewService(st, codec, scheduler),
		Metrics:        m,
		Limiter:        limiter,
		Notifier:       api.LogNotifier{},
		RateLimiting:   cfg.RateLimit.Enabled,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	// Let in-flight deferred sends and standup flushes land before the
	// listener closes.
	scheduler.Wait(cfg.Scheduler.ShutdownGrace)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
