package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of write/chmod/rename events a single
// `cp`/editor-save produces into one reload attempt (spec §4.6).
const reloadDebounce = 50 * time.Millisecond

// suppressDepth bounds the self-write suppression queue: the daemon itself
// never has more than a handful of persists in flight (assignment,
// unassignment, reload-triggered rewrite). Both it and updatesDepth are
// block-on-full per spec §5, not latest-wins.
const suppressDepth = 4

// updatesDepth bounds the reload-notification queue (spec §5).
const updatesDepth = 4

// Store watches a config file's directory for external edits and reloads it,
// while suppressing reload storms triggered by the daemon's own writes.
type Store struct {
	path   string
	logger *slog.Logger

	current FileConfig

	// suppress carries a token for every write Store.Persist performs. The
	// watcher goroutine drains one token per observed event for this file
	// instead of reloading, so a daemon-initiated save never triggers a
	// spurious reload-from-disk (invariant I5).
	suppress chan struct{}

	// Updates delivers every successfully validated reload the watcher
	// observes on a depth-4 block-on-full channel (spec §5): unlike the
	// latest-wins position/focus channels, a reload must never be skipped.
	Updates chan FileConfig
}

// NewStore loads and validates path and prepares a Store ready to Watch. A
// missing or invalid file is returned as an error; sections the file omits
// keep their defaults (see LoadFile).
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		path:     path,
		logger:   logger,
		current:  cfg,
		suppress: make(chan struct{}, suppressDepth),
		Updates:  make(chan FileConfig, updatesDepth),
	}, nil
}

// Current returns the last successfully validated config.
func (s *Store) Current() FileConfig {
	return s.current
}

// Persist writes cfg to disk, marks the following filesystem event as
// self-caused, and adopts cfg as current immediately (no need to wait for
// the watcher to observe its own write).
func (s *Store) Persist(cfg FileConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	// Block-on-full (spec §5): the watcher goroutine is the only consumer of
	// suppress and is never itself blocked waiting on Persist, so this never
	// deadlocks; it just backpressures a caller issuing persists faster than
	// Watch can observe the matching fsnotify events.
	s.suppress <- struct{}{}
	if err := SaveFile(s.path, cfg); err != nil {
		return err
	}
	s.current = cfg
	return nil
}

// Watch blocks, reloading s.current whenever the config file changes on
// disk, until ctx is canceled. Reload failures are logged and leave the
// prior config in effect; they are never fatal to Watch.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(ExpandPath(s.path))
	if err := watcher.Add(dir); err != nil {
		return err
	}

	base := filepath.Base(ExpandPath(s.path))
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			select {
			case <-s.suppress:
				s.logger.Debug("config store: suppressing self-triggered reload", "op", ev.Op.String())
				continue
			default:
			}
			if debounce == nil {
				debounce = time.AfterFunc(reloadDebounce, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			} else {
				debounce.Reset(reloadDebounce)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("config store: watcher error", "error", werr)

		case <-pending:
			s.reload()
		}
	}
}

func (s *Store) reload() {
	if _, err := s.ReloadNow(); err != nil {
		s.logger.Error("config store: reload failed, keeping prior config", "error", err)
	}
}

// ReloadNow reads the config file from disk, validates it, adopts it as
// current, and publishes it on Updates. Called from the fsnotify watch loop,
// a goroutine distinct from Updates' reader, so the block-on-full send below
// never deadlocks.
func (s *Store) ReloadNow() (FileConfig, error) {
	cfg, err := s.reloadFromDisk()
	if err != nil {
		return FileConfig{}, err
	}
	s.Updates <- cfg
	return cfg, nil
}

// ReloadSync reads the config file from disk, validates it, and adopts it as
// current, the same as ReloadNow but without publishing to Updates. The
// engine calls this directly from the same goroutine that drains Updates to
// service an explicit control-plane reload request, applying the result
// itself; publishing it too would both double-apply the reload and block
// forever once Updates filled, since nothing else would be left to drain it.
func (s *Store) ReloadSync() (FileConfig, error) {
	return s.reloadFromDisk()
}

func (s *Store) reloadFromDisk() (FileConfig, error) {
	cfg, err := LoadFile(s.path)
	if err != nil {
		return FileConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	s.current = cfg
	s.logger.Info("config store: reloaded from disk")
	return cfg, nil
}
