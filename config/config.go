// Package config loads the service configuration: YAML file first, then an
// optional .env file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"diseasepredict/logging"
)

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Model    ModelConfig    `yaml:"model"`
	Http     HTTPConfig     `yaml:"http"`
	Sessions SessionConfig  `yaml:"sessions"`
	History  HistoryConfig  `yaml:"history"`
	Log      logging.Config `yaml:"log"`
}

// DataConfig lists the search roots and the artifact paths relative to them.
type DataConfig struct {
	SearchRoots  []string `yaml:"search_roots"`
	Dataset      string   `yaml:"dataset"`
	Descriptions string   `yaml:"descriptions"`
	Precautions  string   `yaml:"precautions"`
}

type ModelConfig struct {
	Type  string `yaml:"type"`
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
	TopK  int    `yaml:"top_k"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type SessionConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// HistoryConfig selects the prediction history backend: sqlite, postgres or
// none.
type HistoryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Data: DataConfig{
			SearchRoots:  DefaultSearchRoots(),
			Dataset:      "data/clean_dataset.tsv",
			Descriptions: "data/symptom_Description.csv",
			Precautions:  "data/symptom_precaution.csv",
		},
		Model: ModelConfig{
			Type:  "xgboost",
			Path:  "model/xgboost_model.json",
			Watch: true,
			TopK:  5,
		},
		Http: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Sessions: SessionConfig{
			Size: 1024,
			TTL:  30 * time.Minute,
		},
		History: HistoryConfig{
			Driver: "sqlite",
			DSN:    "data/history.db",
		},
		Log: logging.DefaultConfig(),
	}
}

// DefaultSearchRoots is the executable's directory, its parent, and the
// working directory.
func DefaultSearchRoots() []string {
	roots := make([]string, 0, 3)
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		roots = append(roots, dir, filepath.Dir(dir))
	}
	return append(roots, ".")
}

// FindConfigFile returns the first candidate that exists, or "" if none do.
func FindConfigFile(candidates ...string) string {
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load reads path over the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := applyEnv(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func applyEnv(config *Config) error {
	if v := os.Getenv("DP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DP_PORT %q: %w", v, err)
		}
		config.Http.Port = port
	}
	config.Log.Level = getEnv("DP_LOG_LEVEL", config.Log.Level)
	config.Model.Path = getEnv("DP_MODEL_PATH", config.Model.Path)
	config.History.Driver = getEnv("DP_HISTORY_DRIVER", config.History.Driver)
	config.History.DSN = getEnv("DP_HISTORY_DSN", config.History.DSN)
	if v := os.Getenv("DP_SEARCH_ROOTS"); v != "" {
		config.Data.SearchRoots = filepath.SplitList(v)
	}
	return nil
}

func (c *Config) Validate() error {
	if len(c.Data.SearchRoots) == 0 {
		return errors.New("data.search_roots must not be empty")
	}
	if c.Data.Dataset == "" || c.Model.Path == "" {
		return errors.New("data.dataset and model.path are required")
	}
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.Http.Port)
	}
	switch strings.ToLower(c.History.Driver) {
	case "", "none", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown history.driver %q", c.History.Driver)
	}
	return nil
}
