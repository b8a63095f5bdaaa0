package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
	"github.com/couchcryptid/flood-risk-service/internal/render"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one update and print the result",
	Long:  "check fetches weather and tide data once, scores the flood risk, and prints the result to stdout.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return check(cmd.Context())
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the result as JSON instead of rendering it")
}

func check(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLoggerTo(os.Stderr, cfg)
	metrics := observability.NewMetrics()

	f, err := buildFetchers(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer f.close(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if checkJSON {
		p := pipeline.New(f.weather, f.tide, logger, metrics)
		inv, result, err := p.Trigger(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pipeline.Snapshot{Invocation: inv, Result: &result})
	}

	term := render.NewTerminal(os.Stdout, cfg.LocationName, cfg.Location)
	p := pipeline.New(f.weather, f.tide, logger, metrics, term)
	_, _, err = p.Trigger(ctx)
	return err
}
