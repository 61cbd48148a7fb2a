// Package focus tracks the desktop's currently activated window by exporting
// a session-bus service a compositor script calls back into (spec §4.5).
package focus

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"

	"pcpaneld/internal/model"
)

const (
	loadRetries  = 5
	loadBackoff  = 500 * time.Millisecond
	updatesDepth = 1
)

// Tracker owns the session-bus connection and the compositor script
// lifecycle. Updates is a latest-wins channel of focus changes.
type Tracker struct {
	logger  *slog.Logger
	Updates chan model.FocusedWindow

	evalCommand string
	scriptDir   string

	conn   *dbus.Conn
	script scriptPaths
	ld     loader
}

// NewTracker constructs a tracker that materializes its script under dir and
// invokes evalCommand (e.g. "gjs") to load it into the running compositor.
func NewTracker(logger *slog.Logger, dir, evalCommand string) *Tracker {
	return &Tracker{
		logger:      logger,
		Updates:     make(chan model.FocusedWindow, updatesDepth),
		evalCommand: evalCommand,
		scriptDir:   dir,
		ld:          gjsLoader{evalCommand: evalCommand},
	}
}

// Run connects to the session bus, exports the focus service, and retries
// loading the compositor script up to loadRetries times with linear backoff.
// On permanent failure it logs once and stays idle until ctx is canceled,
// then returns nil: FocusedApp targets resolve to empty sets for the
// remainder of the process's life, same as any other idle subsystem.
func (t *Tracker) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		t.logger.Warn("focus: session bus unavailable, focused-app targets disabled", "error", err)
		<-ctx.Done()
		return nil
	}
	t.conn = conn
	defer conn.Close()

	if err := exportService(conn, t.Updates); err != nil {
		t.logger.Warn("focus: could not export service, focused-app targets disabled", "error", err)
		<-ctx.Done()
		return nil
	}

	path, err := materializeScript(t.scriptDir, busName, objectPath)
	if err != nil {
		t.logger.Warn("focus: could not materialize script, focused-app targets disabled", "error", err)
		<-ctx.Done()
		return nil
	}
	t.script = scriptPaths{path: path, busName: busName, objectPath: objectPath}

	if !t.loadWithRetry(ctx) {
		t.logger.Warn("focus: compositor script failed to load after retries, focused-app targets disabled")
		<-ctx.Done()
		t.cleanup()
		return nil
	}

	<-ctx.Done()
	t.cleanup()
	return nil
}

func (t *Tracker) loadWithRetry(ctx context.Context) bool {
	for attempt := 1; attempt <= loadRetries; attempt++ {
		err := t.ld.load(t.script)
		if err == nil {
			return true
		}
		t.logger.Debug("focus: script load attempt failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Duration(attempt) * loadBackoff):
		}
	}
	return false
}

func (t *Tracker) cleanup() {
	if t.script.path != "" {
		if err := t.ld.unload(t.script); err != nil {
			t.logger.Debug("focus: script unload failed", "error", err)
		}
		if err := os.Remove(t.script.path); err != nil && !os.IsNotExist(err) {
			t.logger.Debug("focus: could not remove script file", "error", err)
		}
	}
}

// DefaultScriptDir returns the runtime directory the script is materialized
// into, preferring XDG_RUNTIME_DIR.
func DefaultScriptDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pcpaneld")
	}
	return filepath.Join(os.TempDir(), "pcpaneld")
}
