// Package config loads cyberxp's ambient application configuration from
// (highest to lowest priority):
//  1. Environment variables (CYBERXP_*)
//  2. A project config file (./cyberxp.yaml in cwd, or $CYBERXP_CONFIG)
//  3. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every ambient setting cyberxp's commands read.
type Config struct {
	// LogLevel is one of debug, verbose, log, warning, error, fatal.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DataDir is where persisted experience/model/knowledge bundles live.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	Training TrainingConfig `yaml:"training" json:"training"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// TrainingConfig holds training parameters loaded from the config file and
// environment. The commands read only Episodes (train's episode budget when
// none is given on the command line); Workers, Epsilon, DiscountRate and
// FixedStepSize are loaded but not applied to any agent.
type TrainingConfig struct {
	Episodes      int     `yaml:"episodes" json:"episodes"`
	Workers       int     `yaml:"workers" json:"workers"`
	Epsilon       float64 `yaml:"epsilon" json:"epsilon"`
	DiscountRate  float64 `yaml:"discount_rate" json:"discount_rate"`
	FixedStepSize float64 `yaml:"fixed_step_size" json:"fixed_step_size"`
}

// ServerConfig holds the training-visualization server's settings.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// MetricsConfig holds the Prometheus metrics endpoint's settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// Default returns cyberxp's built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel: "log",
		DataDir:  ".cyberxp",
		Training: TrainingConfig{
			Episodes:      1000,
			Workers:       1,
			Epsilon:       0.2,
			DiscountRate:  0.9,
			FixedStepSize: 0.5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}

// Load resolves configuration with the documented precedence: defaults, then
// the project config file, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	fileConfig, err := loadFromPath(projectConfigPath())
	if err != nil {
		return nil, err
	}
	if fileConfig != nil {
		merge(cfg, fileConfig)
	}

	applyEnv(cfg)
	return cfg, nil
}

func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("CYBERXP_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, "cyberxp.yaml")
}

func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays any non-zero field of src onto dst.
func merge(dst, src *Config) {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.Training.Episodes != 0 {
		dst.Training.Episodes = src.Training.Episodes
	}
	if src.Training.Workers != 0 {
		dst.Training.Workers = src.Training.Workers
	}
	if src.Training.Epsilon != 0 {
		dst.Training.Epsilon = src.Training.Epsilon
	}
	if src.Training.DiscountRate != 0 {
		dst.Training.DiscountRate = src.Training.DiscountRate
	}
	if src.Training.FixedStepSize != 0 {
		dst.Training.FixedStepSize = src.Training.FixedStepSize
	}
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Metrics.Addr != "" {
		dst.Metrics.Addr = src.Metrics.Addr
	}
}

// applyEnv overlays CYBERXP_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CYBERXP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CYBERXP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CYBERXP_TRAINING_EPISODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Training.Episodes = n
		}
	}
	if v := os.Getenv("CYBERXP_TRAINING_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Training.Workers = n
		}
	}
	if v := os.Getenv("CYBERXP_TRAINING_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Training.Epsilon = f
		}
	}
	if v := os.Getenv("CYBERXP_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CYBERXP_METRICS_ENABLED"); v == "true" || v == "1" {
		cfg.Metrics.Enabled = true
	} else if v == "false" || v == "0" {
		cfg.Metrics.Enabled = false
	}
	if v := os.Getenv("CYBERXP_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}
