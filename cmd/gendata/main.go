package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := flag.String("dir", ".", "workspace directory to write into")
	rows := flag.Int("rows", 1000, "number of transactions")
	seed := flag.Int64("seed", 42, "random seed")
	days := flag.Int("days", 7, "days covered by the batch")
	pattern := flag.String("pattern", "weekly", "activity pattern: steady, daily or weekly")
	missing := flag.Float64("missing-rate", 0.02, "share of cells left blank per nullable column")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")

	sim := simulator.New(simulator.Config{
		Rows:        *rows,
		Seed:        *seed,
		Days:        *days,
		Pattern:     *pattern,
		MissingRate: *missing,
	})

	if err := sim.WriteWorkspace(simulator.DefaultPaths(*root)); err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}
	return nil
}
