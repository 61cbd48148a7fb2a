package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStoreWatchPicksUpExternalEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcpaneld.toml")
	cfg := DefaultFileConfig()
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	store, err := NewStore(path, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Watch(ctx)

	edited := DefaultFileConfig()
	edited.Device.Serial = "EXTERNAL"
	if err := SaveFile(path, edited); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	select {
	case got := <-store.Updates:
		if got.Device.Serial != "EXTERNAL" {
			t.Errorf("Updates delivered Device.Serial = %q, want EXTERNAL", got.Device.Serial)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for external edit to be picked up")
	}
}

func TestStorePersistUpdatesCurrentImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcpaneld.toml")
	cfg := DefaultFileConfig()
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	store, err := NewStore(path, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	next := DefaultFileConfig()
	next.Device.Serial = "SELF-WRITTEN"
	if err := store.Persist(next); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if store.Current().Device.Serial != "SELF-WRITTEN" {
		t.Errorf("Current().Device.Serial = %q, want SELF-WRITTEN", store.Current().Device.Serial)
	}
}

func TestStorePersistRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcpaneld.toml")
	cfg := DefaultFileConfig()
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	store, err := NewStore(path, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	bad := DefaultFileConfig()
	bad.Signal.Knob.RollingWindow = -1
	if err := store.Persist(bad); err == nil {
		t.Fatal("expected Persist to reject invalid config")
	}
	if store.Current().Signal.Knob.RollingWindow == -1 {
		t.Fatal("rejected config must not become current")
	}
}
