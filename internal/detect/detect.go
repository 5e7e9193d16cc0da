// Package detect orchestrates one change-detection cycle for one URL:
// extract the current snapshot, load the previous one, compare, persist.
package detect

import (
	"github.com/rs/zerolog"

	"github.com/hyperifyio/sitewatch/internal/diff"
	"github.com/hyperifyio/sitewatch/internal/snapshot"
	"github.com/hyperifyio/sitewatch/internal/state"
)

// Detector runs detection cycles against a single state store. It holds no
// global state; the logger and store are injected.
type Detector struct {
	store  *state.Store
	logger zerolog.Logger
}

func New(store *state.Store, logger zerolog.Logger) *Detector {
	return &Detector{store: store, logger: logger}
}

// Detect processes one (url, markup) pair and returns the change report, or
// nil when nothing changed. The current snapshot is persisted even when the
// report is empty so that CapturedAt never goes stale.
//
// No failure here is terminal: a load failure downgrades the cycle to a
// first observation, and a save failure is logged but does not withhold the
// result from the caller.
func (d *Detector) Detect(url string, markup []byte) *diff.Report {
	current := snapshot.Extract(url, markup)

	previous, err := d.store.Load(url)
	if err != nil {
		d.logger.Warn().Err(err).Str("url", url).
			Msg("state load failed; treating as first observation")
		previous = nil
	}

	report := diff.Compare(previous, current)

	if err := d.store.Save(url, current); err != nil {
		// State loss risks a duplicate report next cycle; surface it loudly.
		d.logger.Error().Err(err).Str("url", url).Msg("state save failed")
	}

	return report
}
