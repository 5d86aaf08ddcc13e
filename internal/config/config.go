// Package config provides configuration management for aigov.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (AIGOV_*)
// 3. Project config (.aigov/config.yaml in cwd)
// 4. Home config (~/.aigov/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all aigov configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// Library is the governance library root. Empty means discover from
	// the working directory.
	Library string `yaml:"library" json:"library"`

	// Verbose enables verbose diagnostics.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Probe settings
	Probe ProbeConfig `yaml:"probe" json:"probe"`

	// Linkcheck settings
	Linkcheck LinkcheckConfig `yaml:"linkcheck" json:"linkcheck"`

	// Watch settings
	Watch WatchConfig `yaml:"watch" json:"watch"`
}

// ProbeConfig holds safety probe settings.
type ProbeConfig struct {
	// Model is the Gemini model probes run against.
	Model string `yaml:"model" json:"model"`

	// Temperature is the sampling temperature for probe calls.
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// BlockThreshold tunes the safety filters: none, high, medium, low.
	// Lower thresholds block more content.
	BlockThreshold string `yaml:"block_threshold" json:"block_threshold"`

	// TimeoutSeconds bounds each probe call.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// Concurrency is the number of probes in flight at once.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// LinkcheckConfig holds external link checking settings.
type LinkcheckConfig struct {
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// QPS caps outbound requests per second across all workers.
	QPS float64 `yaml:"qps" json:"qps"`

	// Concurrency is the number of requests in flight at once.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// SkipHosts lists hosts never checked externally.
	SkipHosts []string `yaml:"skip_hosts" json:"skip_hosts"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	// DebounceMillis is how long to wait after the last event before
	// revalidating.
	DebounceMillis int `yaml:"debounce_millis" json:"debounce_millis"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput     = "table"
	defaultProbeModel = "gemini-2.5-flash"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		Library: "",
		Verbose: false,
		Probe: ProbeConfig{
			Model:          defaultProbeModel,
			Temperature:    0.2,
			BlockThreshold: "medium",
			TimeoutSeconds: 30,
			Concurrency:    4,
		},
		Linkcheck: LinkcheckConfig{
			TimeoutSeconds: 10,
			QPS:            4,
			Concurrency:    8,
		},
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aigov", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("AIGOV_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".aigov", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("AIGOV_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("AIGOV_LIBRARY"); v != "" {
		cfg.Library = v
	}
	if os.Getenv("AIGOV_VERBOSE") == "true" || os.Getenv("AIGOV_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("AIGOV_PROBE_MODEL"); v != "" {
		cfg.Probe.Model = v
	}
	if v := os.Getenv("AIGOV_PROBE_BLOCK_THRESHOLD"); v != "" {
		cfg.Probe.BlockThreshold = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// mergeFloat overwrites dst with src when src is non-zero.
func mergeFloat(dst *float64, src float64) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.Library, src.Library)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeProbe(&dst.Probe, &src.Probe)
	mergeLinkcheck(&dst.Linkcheck, &src.Linkcheck)
	mergeWatch(&dst.Watch, &src.Watch)

	return dst
}

// mergeProbe merges probe-specific config fields.
func mergeProbe(dst, src *ProbeConfig) {
	mergeStr(&dst.Model, src.Model)
	mergeFloat(&dst.Temperature, src.Temperature)
	mergeStr(&dst.BlockThreshold, src.BlockThreshold)
	mergeInt(&dst.TimeoutSeconds, src.TimeoutSeconds)
	mergeInt(&dst.Concurrency, src.Concurrency)
}

// mergeLinkcheck merges linkcheck-specific config fields.
func mergeLinkcheck(dst, src *LinkcheckConfig) {
	mergeInt(&dst.TimeoutSeconds, src.TimeoutSeconds)
	mergeFloat(&dst.QPS, src.QPS)
	mergeInt(&dst.Concurrency, src.Concurrency)
	if len(src.SkipHosts) > 0 {
		dst.SkipHosts = src.SkipHosts
	}
}

// mergeWatch merges watch-specific config fields.
func mergeWatch(dst, src *WatchConfig) {
	mergeInt(&dst.DebounceMillis, src.DebounceMillis)
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.aigov/config.yaml"
	SourceProject Source = ".aigov/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output     resolved `json:"output"`
	Library    resolved `json:"library"`
	Verbose    resolved `json:"verbose"`
	ProbeModel resolved `json:"probe_model"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput, flagLibrary string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeOutput, homeLibrary, homeProbeModel string
	var homeVerbose bool
	if homeConfig != nil {
		homeOutput = homeConfig.Output
		homeLibrary = homeConfig.Library
		homeProbeModel = homeConfig.Probe.Model
		homeVerbose = homeConfig.Verbose
	}

	var projectOutput, projectLibrary, projectProbeModel string
	var projectVerbose bool
	if projectConfig != nil {
		projectOutput = projectConfig.Output
		projectLibrary = projectConfig.Library
		projectProbeModel = projectConfig.Probe.Model
		projectVerbose = projectConfig.Verbose
	}

	envOutput := os.Getenv("AIGOV_OUTPUT")
	envLibrary := os.Getenv("AIGOV_LIBRARY")
	envProbeModel := os.Getenv("AIGOV_PROBE_MODEL")
	envVerbose := os.Getenv("AIGOV_VERBOSE") == "true" || os.Getenv("AIGOV_VERBOSE") == "1"

	rc := &ResolvedConfig{
		Output:     resolveStringField(homeOutput, projectOutput, envOutput, flagOutput, defaultOutput),
		Library:    resolveStringField(homeLibrary, projectLibrary, envLibrary, flagLibrary, ""),
		Verbose:    resolved{Value: false, Source: SourceDefault},
		ProbeModel: resolveStringField(homeProbeModel, projectProbeModel, envProbeModel, "", defaultProbeModel),
	}

	if homeVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if projectVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
