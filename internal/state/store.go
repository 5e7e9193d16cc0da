// Package state persists the most recent snapshot per monitored URL as flat
// JSON files, one per URL, keyed by a hash of the URL. The layout is textual
// and human-inspectable; only the latest snapshot is kept.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/sitewatch/internal/snapshot"
)

const (
	filePrefix = "state_"
	fileSuffix = ".json"
)

// Store reads and writes snapshots under Dir. The directory is created on
// first use. Store is safe for concurrent use across distinct URLs; callers
// must not interleave Load/Save for the same URL.
type Store struct {
	Dir string
}

func (s *Store) ensureDir() error {
	if s == nil || s.Dir == "" {
		return errors.New("state dir not configured")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Key returns the stable storage key for a URL.
func (s *Store) Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(url string) string {
	return filepath.Join(s.Dir, filePrefix+s.Key(url)+fileSuffix)
}

// Load returns the stored snapshot for url, or (nil, nil) when none exists.
// A read or decode failure is returned as an error; callers treat it as "no
// previous state". Unknown fields in the file are ignored.
func (s *Store) Load(url string) (*snapshot.Snapshot, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(url))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open state: %w", err)
	}
	defer f.Close()
	var snap snapshot.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot for url. The write goes through a temp
// file and rename so a crash never leaves a truncated record behind.
func (s *Store) Save(url string, snap snapshot.Snapshot) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	path := s.path(url)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create state: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&snap); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode state: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// PurgeOlderThan deletes state files whose modification time is older than
// maxAge and reports how many were removed. Individual failures are skipped
// so one bad file cannot abort the sweep. maxAge <= 0 disables the purge.
func (s *Store) PurgeOlderThan(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	if err := s.ensureDir(); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}
