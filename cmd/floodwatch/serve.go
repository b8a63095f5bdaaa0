package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flood-risk-service/internal/adapter/alert"
	httpadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
	"github.com/couchcryptid/flood-risk-service/internal/render"
	"github.com/spf13/cobra"
)

var serveRender bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and refresh conditions periodically",
	Long: "serve refreshes weather and tide data every REFRESH_INTERVAL, exposes the latest " +
		"assessment over HTTP, and optionally publishes each update to Kafka.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveRender, "render", false, "Also render each update to stderr")
}

func serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	f, err := buildFetchers(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer f.close(logger)

	latest := pipeline.NewLatest()
	sinks := []pipeline.Sink{latest}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		sinks = append(sinks, publisher)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}
	if cfg.AlertEnabled {
		mailer := alert.NewSendGrid(alert.SendGridOptions{
			BaseURL:  cfg.AlertAPIURL,
			APIKey:   cfg.AlertAPIKey,
			From:     cfg.AlertFrom,
			FromName: cfg.AlertFromName,
			To:       cfg.AlertTo,
			Timeout:  cfg.AlertTimeout,
		}, logger)
		sinks = append(sinks, alert.NewNotifier(mailer, cfg.LocationName, cfg.Location, logger, metrics))
		logger.Info("high-risk alerts enabled", "recipients", len(cfg.AlertTo))
	}
	if serveRender {
		sinks = append(sinks, render.NewTerminal(os.Stderr, cfg.LocationName, cfg.Location))
	}

	p := pipeline.New(f.weather, f.tide, logger, metrics, sinks...)
	p.SetSinkTimeout(cfg.SinkTimeout)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, latest, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start refresh loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx, cfg.RefreshInterval); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("refresh loop did not stop before shutdown timeout")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
