package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from defaults, an optional YAML file and
// SCORER_* environment variables, in increasing order of precedence.
// With an empty configPath a scorer.yaml in the working directory or
// /etc/scorer is picked up when present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("scorer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/scorer")
	}

	v.SetEnvPrefix("SCORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "mlops-scoring")
	v.SetDefault("app.mode", "production")
	v.SetDefault("app.log_level", "info")

	// Conventional container paths
	v.SetDefault("paths.input", "./input/test.csv")
	v.SetDefault("paths.processed", "./work/processed.csv")
	v.SetDefault("paths.output_dir", "./output")
	v.SetDefault("paths.manifest", "features.json")
	v.SetDefault("paths.threshold", "threshold.txt")
	v.SetDefault("paths.model", "model.json")

	// Preprocess defaults
	v.SetDefault("preprocess.id_column", "id")
	v.SetDefault("preprocess.timestamp_column", "transaction_time")
	v.SetDefault("preprocess.lat_column", "lat")
	v.SetDefault("preprocess.lon_column", "lon")
	v.SetDefault("preprocess.merchant_lat_column", "merchant_lat")
	v.SetDefault("preprocess.merchant_lon_column", "merchant_lon")
	v.SetDefault("preprocess.categorical_columns", []string{"cat_id", "gender"})

	// Submission defaults
	v.SetDefault("submission.file", "sample_submission.csv")
	v.SetDefault("submission.binary_file", "sample_submission_binary.csv")
	v.SetDefault("submission.id_column", "id")
	v.SetDefault("submission.probability_column", "target")
	v.SetDefault("submission.label_column", "label")

	// Report defaults
	v.SetDefault("report.importances", true)
	v.SetDefault("report.importances_file", "importances.json")
	v.SetDefault("report.top_k", 5)
	v.SetDefault("report.density", true)
	v.SetDefault("report.density_file", "scores_density.csv")
	v.SetDefault("report.density_bins", 50)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.file", "metrics.prom")

	// Export defaults
	v.SetDefault("export.enabled", false)
	v.SetDefault("export.batch_size", 500)
	v.SetDefault("export.migrate", true)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "scoring")
	v.SetDefault("database.user", "scoring")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_connections", 4)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.ping_timeout", "10s")
	v.SetDefault("database.migration_timeout", "30s")
}
