package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Durations are
// strings in Go syntax ("30s", "720h").
type FileConfig struct {
	URLs string `yaml:"urls"`

	State struct {
		Dir    string `yaml:"dir"`
		MaxAge string `yaml:"maxAge"`
	} `yaml:"state"`

	Fetch struct {
		UserAgent   string `yaml:"userAgent"`
		Timeout     string `yaml:"timeout"`
		MaxAttempts int    `yaml:"maxAttempts"`
		RetryDelay  string `yaml:"retryDelay"`
	} `yaml:"fetch"`

	DryRun  bool `yaml:"dryRun"`
	Verbose bool `yaml:"verbose"`
}

// LoadConfigFile reads YAML into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields still at their
// zero/default value, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if (cfg.URLsFile == "" || cfg.URLsFile == DefaultURLsFile) && fc.URLs != "" {
		cfg.URLsFile = fc.URLs
	}
	if (cfg.StateDir == "" || cfg.StateDir == DefaultStateDir) && fc.State.Dir != "" {
		cfg.StateDir = fc.State.Dir
	}
	if cfg.StateMaxAge == 0 && fc.State.MaxAge != "" {
		d, err := time.ParseDuration(fc.State.MaxAge)
		if err != nil {
			return fmt.Errorf("state.maxAge: %w", err)
		}
		cfg.StateMaxAge = d
	}
	if (cfg.UserAgent == "" || cfg.UserAgent == DefaultUserAgent) && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if (cfg.Timeout == 0 || cfg.Timeout == DefaultTimeout) && fc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("fetch.timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if (cfg.MaxAttempts == 0 || cfg.MaxAttempts == DefaultMaxAttempts) && fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if (cfg.RetryDelay == 0 || cfg.RetryDelay == DefaultRetryDelay) && fc.Fetch.RetryDelay != "" {
		d, err := time.ParseDuration(fc.Fetch.RetryDelay)
		if err != nil {
			return fmt.Errorf("fetch.retryDelay: %w", err)
		}
		cfg.RetryDelay = d
	}
	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}
