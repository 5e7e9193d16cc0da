package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/sitewatch/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath  string
		urlsFile    string
		stateDir    string
		stateMaxAge time.Duration
		userAgent   string
		timeout     time.Duration
		maxAttempts int
		retryDelay  time.Duration
		dryRun      bool
		verbose     bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("SITEWATCH_CONFIG"), "Path to optional YAML config file")
	flag.StringVar(&urlsFile, "urls", envOr("URLS_FILE", app.DefaultURLsFile), "Path to URL list, one URL per line")
	flag.StringVar(&stateDir, "state.dir", envOr("STATE_DIR", app.DefaultStateDir), "Directory for per-URL snapshot state")
	flag.DurationVar(&stateMaxAge, "state.maxAge", 0, "Delete state files older than this before the pass (e.g. 720h); 0 disables")
	flag.StringVar(&userAgent, "ua", app.DefaultUserAgent, "User-Agent for page fetches")
	flag.DurationVar(&timeout, "timeout", app.DefaultTimeout, "Per-request timeout")
	flag.IntVar(&maxAttempts, "retries", app.DefaultMaxAttempts, "Total fetch attempts per URL, including the first")
	flag.DurationVar(&retryDelay, "retry.delay", app.DefaultRetryDelay, "Base retry backoff; doubles per attempt")
	flag.BoolVar(&dryRun, "dry-run", false, "Detect and log changes without sending mail")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		URLsFile:    urlsFile,
		StateDir:    stateDir,
		StateMaxAge: stateMaxAge,
		UserAgent:   userAgent,
		Timeout:     timeout,
		MaxAttempts: maxAttempts,
		RetryDelay:  retryDelay,
		DryRun:      dryRun,
		Verbose:     verbose,
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("config file")
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("config file")
		}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	a, err := app.New(cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init failed")
	}
	if err := a.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
