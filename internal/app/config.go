package app

import "time"

// Defaults shared by flag parsing and file-config merging.
const (
	DefaultURLsFile    = "urls.txt"
	DefaultStateDir    = ".sitewatch-state"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 4
	DefaultRetryDelay  = time.Second
)

// Config holds runtime configuration for the monitor.
type Config struct {
	// URLsFile lists the monitored URLs, one per line.
	URLsFile string

	// State store
	StateDir    string
	StateMaxAge time.Duration // 0 disables the purge sweep

	// Fetching
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration

	// Behavior
	DryRun  bool // detect and log, never send mail
	Verbose bool
}
