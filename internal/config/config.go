// Package config loads the server configuration from an optional YAML file and
// overlays it with environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/soundclusters/internal/adapters/artifacts"
)

// Storage drivers for the track catalog.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// Config represents the full configuration file.
// Every section is listed so that strict parsing rejects typos.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Storage   StorageConfig   `yaml:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Spotify   SpotifyConfig   `yaml:"spotify"`
	Ollama    OllamaConfig    `yaml:"ollama"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type ArtifactsConfig struct {
	artifacts.Paths `yaml:",inline"`
	Columns         artifacts.Columns `yaml:"columns"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type DashboardConfig struct {
	SampleRows  int  `yaml:"sample_rows"`
	MoodRows    int  `yaml:"mood_rows"`
	Memoize     bool `yaml:"memoize"`
	WarmWorkers int  `yaml:"warm_workers"`
	WarmQueue   int  `yaml:"warm_queue"`
}

type SpotifyConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	BaseURL      string        `yaml:"base_url"`
	TokenURL     string        `yaml:"token_url"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Enabled reports whether credentials are present.
func (s SpotifyConfig) Enabled() bool { return s.ClientID != "" && s.ClientSecret != "" }

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// Enabled reports whether a host is configured.
func (o OllamaConfig) Enabled() bool { return o.Host != "" }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Paths: artifacts.Paths{
				Dataset: "data/Final_Clustered_Dataset.csv",
				Scaler:  "data/scaler.yaml",
				Model:   "data/kmeans_model.yaml",
			},
			Columns: artifacts.DefaultColumns(),
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "soundclusters.db",
		},
		Dashboard: DashboardConfig{
			SampleRows:  8,
			MoodRows:    5,
			Memoize:     true,
			WarmWorkers: 2,
			WarmQueue:   32,
		},
		Spotify: SpotifyConfig{
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML into cfg with strict field checking. Keys absent from
// the document keep the values already in cfg.
func Decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		// An empty document leaves cfg untouched.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnv overlays environment variables. Unparseable numbers are logged and
// ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.LogLevel, "SOUNDCLUSTERS_LOG_LEVEL")
	setString(&c.Server.Addr, "SOUNDCLUSTERS_ADDR")
	setString(&c.Artifacts.Dataset, "SOUNDCLUSTERS_DATASET")
	setString(&c.Artifacts.Scaler, "SOUNDCLUSTERS_SCALER")
	setString(&c.Artifacts.Model, "SOUNDCLUSTERS_MODEL")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Path, "SQLITE_PATH")
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setString(&c.Ollama.Host, "OLLAMA_HOST")
	setString(&c.Ollama.Model, "OLLAMA_MODEL")

	if raw := getenv("SOUNDCLUSTERS_MEMOIZE"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			c.Dashboard.Memoize = v
		} else {
			logrus.Warnf("config: ignoring SOUNDCLUSTERS_MEMOIZE=%q", raw)
		}
	}
	if raw := getenv("SOUNDCLUSTERS_WARM_WORKERS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			c.Dashboard.WarmWorkers = v
		} else {
			logrus.Warnf("config: ignoring SOUNDCLUSTERS_WARM_WORKERS=%q", raw)
		}
	}
	if raw := getenv("SPOTIFY_MAX_RETRIES"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			c.Spotify.MaxRetries = v
		} else {
			logrus.Warnf("config: ignoring SPOTIFY_MAX_RETRIES=%q", raw)
		}
	}
	if raw := getenv("SPOTIFY_RETRY_BACKOFF_MS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			c.Spotify.RetryBackoff = time.Duration(v) * time.Millisecond
		} else {
			logrus.Warnf("config: ignoring SPOTIFY_RETRY_BACKOFF_MS=%q", raw)
		}
	}
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Artifacts.Dataset == "" || c.Artifacts.Scaler == "" || c.Artifacts.Model == "" {
		errs = append(errs, errors.New("artifacts.dataset, artifacts.scaler and artifacts.model are required"))
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	case DriverMemory, DriverNone:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Dashboard.SampleRows < 1 || c.Dashboard.MoodRows < 1 {
		errs = append(errs, errors.New("dashboard.sample_rows and dashboard.mood_rows must be positive"))
	}
	if c.Dashboard.WarmWorkers < 0 {
		errs = append(errs, errors.New("dashboard.warm_workers must not be negative"))
	}
	if c.Spotify.MaxRetries < 1 || c.Spotify.RetryBackoff <= 0 {
		errs = append(errs, errors.New("spotify.max_retries and spotify.retry_backoff must be positive"))
	}
	if (c.Spotify.ClientID == "") != (c.Spotify.ClientSecret == "") {
		errs = append(errs, errors.New("spotify.client_id and spotify.client_secret must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
