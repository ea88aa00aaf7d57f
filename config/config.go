// Package config loads go-philolex's runtime configuration from
// philolex.yaml and PHILOLEX_* environment overrides, the way
// leapsql's internal/config layers koanf's file and env providers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// ConfigFileName is the default config file name, looked up in the
// current directory only.
const ConfigFileName = "philolex.yaml"

// Config covers every row of spec §6's configuration table plus the
// service-level wiring (data directory, ports, upstream URLs) needed
// to actually construct the engine and its dependencies.
type Config struct {
	// DataDir is the per-user data directory housing the cache, fact
	// index, CTS index, and CDSL index DuckDB files (spec §6).
	DataDir string `koanf:"data_dir"`

	CacheEnabled  bool   `koanf:"cache_enabled"`
	CachePath     string `koanf:"cache_path"`
	FactIndexEnabled   bool   `koanf:"fact_index_enabled"`
	FactIndexPath      string `koanf:"fact_index_path"`
	CTSIndexPath       string `koanf:"cts_index_path"`
	CDSLIndexPath      string `koanf:"cdsl_index_path"`

	NormalizationEnabled  bool `koanf:"normalization_enabled"`
	CanonicalProbeEnabled bool `koanf:"canonical_probe_enabled"`
	StoreRawResponses     bool `koanf:"store_raw_responses"`

	AdapterTimeoutMS      int `koanf:"adapter_timeout_ms"`
	CanonicalProbePoolSize int `koanf:"canonical_probe_pool_size"`

	LogLevel string `koanf:"log_level"`

	HTTPPort int `koanf:"http_port"`

	Upstreams UpstreamsConfig `koanf:"upstreams"`
}

// UpstreamsConfig holds the reachable-endpoint configuration for each
// backend (spec §6's "External Interfaces").
type UpstreamsConfig struct {
	DiogenesBaseURL       string `koanf:"diogenes_base_url"`
	CanonicalProbeBaseURL string `koanf:"canonical_probe_base_url"`
	CanonicalProbeLex     string `koanf:"canonical_probe_lex"`
	MorphologyProbeBaseURL string `koanf:"morphology_probe_base_url"`
	HeritageBaseURL       string `koanf:"heritage_base_url"`
	WhitakersBinary       string `koanf:"whitakers_binary"`
}

// AdapterTimeout returns the configured per-adapter deadline,
// defaulting to 5s per spec §4.7.
func (c Config) AdapterTimeout() time.Duration {
	if c.AdapterTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.AdapterTimeoutMS) * time.Millisecond
}

// ZerologLevel maps the configured log_level onto zerolog.Level, per
// SPEC_FULL's ambient-stack logging section.
func (c Config) ZerologLevel() zerolog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Default returns a Config with every option at the default spec §6
// describes: cache and normalization on, probes and fact index off,
// a 5s adapter timeout, a pool of 16 connections, INFO logging.
func Default() Config {
	dataDir := filepath.Join(xdg.DataHome, "philolex")
	return Config{
		DataDir:                dataDir,
		CacheEnabled:           true,
		CachePath:              filepath.Join(dataDir, "cache.duckdb"),
		FactIndexEnabled:       false,
		FactIndexPath:          filepath.Join(dataDir, "facts.duckdb"),
		CTSIndexPath:           filepath.Join(dataDir, "cts_index.duckdb"),
		CDSLIndexPath:          filepath.Join(dataDir, "cdsl_index.duckdb"),
		NormalizationEnabled:   true,
		CanonicalProbeEnabled:  false,
		StoreRawResponses:      false,
		AdapterTimeoutMS:       5000,
		CanonicalProbePoolSize: 16,
		LogLevel:               "INFO",
		HTTPPort:               8089,
		Upstreams: UpstreamsConfig{
			CanonicalProbeLex: "MW",
		},
	}
}

// Load reads the config file at path (or philolex.yaml in the current
// directory when path is empty) and layers PHILOLEX_*-prefixed
// environment variables on top, the way leapsql's loader layers
// file.Provider under env.Provider. A missing ./philolex.yaml is not
// an error — Default()'s values stand — but a missing file at an
// explicitly given path is.
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	candidate := path
	if candidate == "" {
		candidate = ConfigFileName
	}
	if _, err := os.Stat(candidate); err == nil {
		if err := k.Load(file.Provider(candidate), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("config: failed to load %s: %w", candidate, err)
		}
	} else if path != "" {
		return cfg, fmt.Errorf("config: config file %q not found: %w", path, err)
	}

	// PHILOLEX_CACHE_ENABLED -> cache_enabled; nested keys (Upstreams)
	// use a double underscore: PHILOLEX_UPSTREAMS__DIOGENES_BASE_URL ->
	// upstreams.diogenes_base_url.
	if err := k.Load(env.Provider("PHILOLEX_", ".", func(s string) string {
		trimmed := strings.ToLower(strings.TrimPrefix(s, "PHILOLEX_"))
		return strings.Replace(trimmed, "__", ".", 1)
	}), nil); err != nil {
		return cfg, fmt.Errorf("config: failed to load environment overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	return cfg, nil
}
