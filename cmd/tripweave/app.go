package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tripweave/tripweave/config"
	"github.com/tripweave/tripweave/feedback"
	"github.com/tripweave/tripweave/images"
	"github.com/tripweave/tripweave/insight"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/model"
	"github.com/tripweave/tripweave/pipeline"
	"github.com/tripweave/tripweave/places"
	"github.com/tripweave/tripweave/render"
	"github.com/tripweave/tripweave/scene"
	"github.com/tripweave/tripweave/server"
	"github.com/tripweave/tripweave/trip"
)

// app holds the wired component graph for one process.
type app struct {
	cfg        *config.Config
	registry   *model.Registry
	client     *llm.Client
	classifier *feedback.Classifier
	pipe       *pipeline.Pipeline
	metrics    *prometheus.Registry
	logger     *slog.Logger
}

// buildApp wires the collaborators the way the config describes them.
func buildApp(cfg *config.Config, logger *slog.Logger) *app {
	registry := cfg.BuildRegistry()

	clientOpts := []llm.ClientOption{llm.WithLogger(logger)}
	if cfg.Model.RequestsPerSecond > 0 {
		clientOpts = append(clientOpts, llm.WithRateLimit(cfg.Model.RequestsPerSecond, 1))
	}
	client := llm.NewClient(registry, clientOpts...)

	var confirmGenerator scene.TextGenerator
	if cfg.Pipeline.SceneConfirmation {
		confirmGenerator = client
	}
	classifier := scene.NewClassifier(confirmGenerator, scene.WithLogger(logger))

	placeLookup := places.NewClient(cfg.Places.BaseURL,
		places.WithCacheTTL(cfg.Places.CacheTTL),
		places.WithLogger(logger))

	imageChain := images.NewChain(cfg.Images.Providers,
		images.WithCacheTTL(cfg.Images.CacheTTL),
		images.WithLogger(logger))

	promRegistry := prometheus.NewRegistry()

	pipeOpts := []pipeline.Option{
		pipeline.WithTemperature(cfg.Model.Temperature),
		pipeline.WithDayConcurrency(cfg.Pipeline.DayConcurrency),
		pipeline.WithImagesPerDay(cfg.Pipeline.ImagesPerDay),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(pipeline.NewMetrics(promRegistry)),
	}
	if cfg.Insight.Enabled {
		collector := insight.NewCollector(cfg.Insight.Timeout, cfg.Insight.MaxContentBytes, client, logger)
		pipeOpts = append(pipeOpts, pipeline.WithInsights(collector))
	}

	return &app{
		cfg:        cfg,
		registry:   registry,
		client:     client,
		classifier: feedback.NewClassifier(client, logger),
		pipe:       pipeline.New(client, classifier, placeLookup, imageChain, pipeOpts...),
		metrics:    promRegistry,
		logger:     logger,
	}
}

func serveCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			a := buildApp(cfg, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Model registry follows config file edits without restart.
			if *configPath != "" {
				go func() {
					err := config.Watch(ctx, *configPath, logger, func(next *config.Config) {
						a.registry.Apply(next.Model.Capabilities, next.Model.Endpoints, next.Model.Default)
					})
					if err != nil && err != context.Canceled {
						logger.Warn("Config watch unavailable", "error", err)
					}
				}()
			}

			srv := server.New(cfg.Server, a.pipe, a.classifier, a.client,
				server.WithLogger(logger),
				server.WithPrometheusRegistry(a.metrics))

			logger.Info("Tripweave ready", "version", Version, "addr", cfg.Server.Addr)
			return srv.Run(ctx)
		},
	}
}

func generateCmd(configPath, logLevel *string) *cobra.Command {
	var (
		output   string
		duration int
		links    []string
	)

	cmd := &cobra.Command{
		Use:   "generate [request]",
		Short: "Generate one itinerary and print it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			a := buildApp(cfg, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prompt := args[0]
			for _, arg := range args[1:] {
				prompt += " " + arg
			}
			if duration > 0 {
				prompt += " for " + strconv.Itoa(duration) + " days"
			}

			stream, outcome := a.pipe.Run(ctx, trip.Request{
				Prompt:         prompt,
				ReferenceLinks: links,
			})
			for msg := range stream {
				switch msg.Kind {
				case pipeline.KindProgress:
					logger.Info("Progress", "phase", msg.Phase, "percent", msg.Progress)
				case pipeline.KindError:
					return fmt.Errorf("generation failed: %s", msg.Err)
				}
			}

			markup := make([]string, len(outcome.Days))
			for i, d := range outcome.Days {
				markup[i] = d.Markup
			}
			doc, err := render.Document(outcome.Skeleton, markup)
			if err != nil {
				return fmt.Errorf("assemble document: %w", err)
			}

			if output == "" {
				fmt.Println(doc)
				return nil
			}
			if err := os.WriteFile(output, []byte(doc), 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			logger.Info("Itinerary written", "path", output, "days", len(outcome.Days))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the itinerary HTML to a file")
	cmd.Flags().IntVar(&duration, "days", 0, "Trip duration hint in days")
	cmd.Flags().StringSliceVar(&links, "link", nil, "Reference article link (repeatable)")
	return cmd
}
