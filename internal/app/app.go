// Package app wires the fetcher, detector and notifier into one monitoring
// pass over a list of URLs.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/sitewatch/internal/detect"
	"github.com/hyperifyio/sitewatch/internal/diff"
	"github.com/hyperifyio/sitewatch/internal/fetch"
	"github.com/hyperifyio/sitewatch/internal/notify"
	"github.com/hyperifyio/sitewatch/internal/state"
)

// Notifier delivers the pass's accumulated changes. Satisfied by
// notify.Mailer; tests substitute a recorder.
type Notifier interface {
	Send(changes []notify.Change) error
}

// App runs monitoring passes. Collaborators are injected at construction;
// the detection core never touches globals.
type App struct {
	cfg      Config
	logger   zerolog.Logger
	store    *state.Store
	fetcher  *fetch.Client
	detector *detect.Detector
	notifier Notifier
}

// New builds an App from cfg. The notifier is only constructed for real
// runs: dry runs never send mail, so they need no SMTP configuration.
func New(cfg Config, logger zerolog.Logger) (*App, error) {
	store := &state.Store{Dir: cfg.StateDir}
	a := &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		fetcher: &fetch.Client{
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       cfg.MaxAttempts,
			RetryDelay:        cfg.RetryDelay,
			PerRequestTimeout: cfg.Timeout,
			Logger:            logger,
		},
		detector: detect.New(store, logger),
	}
	if !cfg.DryRun {
		mailer, err := notify.NewMailerFromEnv(logger)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		a.notifier = mailer
	}
	return a, nil
}

// Run performs one monitoring pass: purge stale state, process every URL
// sequentially, then send a single notification if anything changed. One
// URL's failure never aborts the others; only an empty URL list or a failed
// notification is an error.
func (a *App) Run(ctx context.Context) error {
	urls, err := LoadURLs(a.cfg.URLsFile)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to monitor in %s", a.cfg.URLsFile)
	}
	a.logger.Info().Int("count", len(urls)).Str("file", a.cfg.URLsFile).Msg("URLs loaded")

	if a.cfg.StateMaxAge > 0 {
		removed, err := a.store.PurgeOlderThan(a.cfg.StateMaxAge)
		if err != nil {
			a.logger.Warn().Err(err).Msg("state purge failed")
		} else if removed > 0 {
			a.logger.Info().Int("removed", removed).Msg("purged stale state files")
		}
	}

	var changes []notify.Change
	for _, url := range urls {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report := a.processURL(ctx, url)
		if report == nil {
			continue
		}
		changes = append(changes, notify.Change{URL: url, Report: report})
	}

	if len(changes) == 0 {
		a.logger.Info().Msg("no changes detected across monitored sites")
		return nil
	}
	a.logger.Info().Int("changes", len(changes)).Msg("changes detected")

	if a.cfg.DryRun {
		a.logger.Info().Msg("dry run; skipping notification")
		return nil
	}
	if err := a.notifier.Send(changes); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (a *App) processURL(ctx context.Context, url string) *diff.Report {
	a.logger.Debug().Str("url", url).Msg("processing")
	body, err := a.fetcher.Get(ctx, url)
	if err != nil {
		a.logger.Warn().Err(err).Str("url", url).Msg("fetch failed; skipping this cycle")
		return nil
	}
	report := a.detector.Detect(url, body)
	if report == nil {
		a.logger.Debug().Str("url", url).Msg("no changes")
		return nil
	}
	a.logger.Info().Str("url", url).Bool("initial", report.Initial).Msg("change detected")
	return report
}
