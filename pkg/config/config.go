package config

import (
	"fmt"
	"path/filepath"
	"time"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
	Submission SubmissionConfig `mapstructure:"submission"`
	Report     ReportConfig     `mapstructure:"report"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Export     ExportConfig     `mapstructure:"export"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
}

// PathsConfig holds the conventional file locations. Relative paths are
// resolved against the working directory of the process.
type PathsConfig struct {
	Input     string `mapstructure:"input"`
	Processed string `mapstructure:"processed"`
	OutputDir string `mapstructure:"output_dir"`
	Manifest  string `mapstructure:"manifest"`
	Threshold string `mapstructure:"threshold"`
	Model     string `mapstructure:"model"`
}

// Output returns name joined onto the output directory.
func (p PathsConfig) Output(name string) string {
	return filepath.Join(p.OutputDir, name)
}

type PreprocessConfig struct {
	IDColumn           string   `mapstructure:"id_column"`
	TimestampColumn    string   `mapstructure:"timestamp_column"`
	LatColumn          string   `mapstructure:"lat_column"`
	LonColumn          string   `mapstructure:"lon_column"`
	MerchantLatColumn  string   `mapstructure:"merchant_lat_column"`
	MerchantLonColumn  string   `mapstructure:"merchant_lon_column"`
	CategoricalColumns []string `mapstructure:"categorical_columns"`
}

type SubmissionConfig struct {
	File              string `mapstructure:"file"`
	BinaryFile        string `mapstructure:"binary_file"`
	IDColumn          string `mapstructure:"id_column"`
	ProbabilityColumn string `mapstructure:"probability_column"`
	LabelColumn       string `mapstructure:"label_column"`
}

type ReportConfig struct {
	Importances     bool   `mapstructure:"importances"`
	ImportancesFile string `mapstructure:"importances_file"`
	TopK            int    `mapstructure:"top_k"`
	Density         bool   `mapstructure:"density"`
	DensityFile     string `mapstructure:"density_file"`
	DensityBins     int    `mapstructure:"density_bins"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// ExportConfig controls the optional copy of predictions into Postgres.
type ExportConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	BatchSize int  `mapstructure:"batch_size"`
	Migrate   bool `mapstructure:"migrate"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxConnections   int           `mapstructure:"max_connections"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
}

func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}
