package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Paths validation
	paths := []struct{ key, value string }{
		{"paths.input", c.Paths.Input},
		{"paths.processed", c.Paths.Processed},
		{"paths.output_dir", c.Paths.OutputDir},
		{"paths.manifest", c.Paths.Manifest},
		{"paths.threshold", c.Paths.Threshold},
		{"paths.model", c.Paths.Model},
	}
	for _, p := range paths {
		if p.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", p.key))
		}
	}

	// Preprocess validation
	if c.Preprocess.IDColumn == "" {
		errs = append(errs, errors.New("preprocess.id_column is required"))
	}
	if c.Preprocess.TimestampColumn == "" {
		errs = append(errs, errors.New("preprocess.timestamp_column is required"))
	}

	// Submission validation
	if c.Submission.File == "" {
		errs = append(errs, errors.New("submission.file is required"))
	}
	cols := []string{c.Submission.IDColumn, c.Submission.ProbabilityColumn, c.Submission.LabelColumn}
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if col == "" {
			errs = append(errs, errors.New("submission columns must not be empty"))
			break
		}
		if seen[col] {
			errs = append(errs, fmt.Errorf("submission column %q is used twice", col))
		}
		seen[col] = true
	}

	// Report validation
	if c.Report.Importances && c.Report.TopK <= 0 {
		errs = append(errs, errors.New("report.top_k must be positive"))
	}
	if c.Report.Density && c.Report.DensityBins <= 0 {
		errs = append(errs, errors.New("report.density_bins must be positive"))
	}

	if c.Metrics.Enabled && c.Metrics.File == "" {
		errs = append(errs, errors.New("metrics.file is required when metrics are enabled"))
	}

	// Export validation
	if c.Export.Enabled {
		if c.Export.BatchSize <= 0 {
			errs = append(errs, errors.New("export.batch_size must be positive"))
		}
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
