package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OldStager01/mlops-scoring/internal/export"
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/orchestrator"
	"github.com/OldStager01/mlops-scoring/pkg/config"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	stageName := flag.String("stage", "all", "stages to run: all, preprocess or predict")
	flag.Parse()

	stage, ok := models.ParseStage(*stageName)
	if !ok {
		return fmt.Errorf("unknown stage %q", *stageName)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s (stage=%s)", cfg.App.Name, stage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := export.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up export: %w", err)
	}

	orch := orchestrator.New(cfg, exporter)
	defer func() {
		if err := orch.Close(); err != nil {
			logger.Errorf("Failed to close orchestrator: %v", err)
		}
	}()

	if _, err := orch.Run(ctx, stage); err != nil {
		return err
	}
	return nil
}
