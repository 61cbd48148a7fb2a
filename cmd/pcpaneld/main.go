package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"pcpaneld/internal/audio"
	"pcpaneld/internal/config"
	"pcpaneld/internal/engine"
	"pcpaneld/internal/focus"
	"pcpaneld/internal/hid"
	"pcpaneld/internal/ipc"
)

const version = "1.0.0"

const defaultConfigPath = "~/.config/pcpaneld/config.toml"

func printVersion() {
	fmt.Printf("pcpaneld v%s\n", version)
	fmt.Println("Daemon bridging a USB HID mixer panel to a PulseAudio-compatible sound server")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  pcpaneld [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Printf("        Path to TOML config file (default %q)\n", defaultConfigPath)
	fmt.Println()
	fmt.Println("  -print-default-config")
	fmt.Println("        Print a default TOML config to stdout and exit")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Override logging.level from config (error, warn, info, debug)")
	fmt.Println()
	fmt.Println("  -device-serial string")
	fmt.Println("        Override device.serial from config")
	fmt.Println()
	fmt.Println("  -socket string")
	fmt.Println("        Override ipc.socket_path from config")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath         = flag.String("config", "", "Path to TOML config file")
		printDefaultConfig = flag.Bool("print-default-config", false, "Print default TOML config and exit")
		logLevelOverride   = flag.String("log-level", "", "Override logging.level from config")
		serialOverride     = flag.String("device-serial", "", "Override device.serial from config")
		socketOverride     = flag.String("socket", "", "Override ipc.socket_path from config")
		showVersion        = flag.Bool("version", false, "Print version and exit")
		showHelp           = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}
	if *printDefaultConfig {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config.DefaultFileConfig()); err != nil {
			fmt.Fprintln(os.Stderr, "error: marshal default config:", err)
			os.Exit(1)
		}
		fmt.Println(buf.String())
		return
	}
	if *configPath == "" {
		*configPath = defaultConfigPath
	}
	*configPath = config.ExpandPath(*configPath)

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		if err := config.SaveFile(*configPath, config.DefaultFileConfig()); err != nil {
			fmt.Fprintln(os.Stderr, "error: write default config:", err)
			os.Exit(1)
		}
	}

	overrides := config.FlagOverrides{}
	if *logLevelOverride != "" {
		overrides.LogLevel = logLevelOverride
	}
	if *serialOverride != "" {
		overrides.DeviceSerial = serialOverride
	}
	if *socketOverride != "" {
		overrides.SocketPath = socketOverride
	}

	logger := setupLogger(slog.LevelInfo)

	store, err := config.NewStore(*configPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: load config:", err)
		os.Exit(1)
	}

	fc := store.Current()
	overrides.Apply(&fc)
	if err := fc.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error: invalid config:", err)
		os.Exit(1)
	}

	level, err := parseLogLevel(fc.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger = setupLogger(level)

	socketPath := config.ResolvedSocketPath(fc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	hidSub := hid.NewSubsystem(fc.Device.Serial, logger)
	hotplug := hid.NewHotplugMonitor(logger)
	audioSub := audio.NewSubsystem(logger)
	tracker := focus.NewTracker(logger, focus.DefaultScriptDir(), "gjs")

	loop, err := engine.NewLoop(logger, hidSub, audioSub, tracker, store)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: build engine:", err)
		os.Exit(1)
	}

	ipcServer := ipc.NewServer(logger, socketPath, loop.Requests)
	if err := ipcServer.Listen(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	g.Go(func() error { return hotplug.Run(ctx) })
	g.Go(func() error { return hidSub.Run(ctx, hotplug.Events) })
	g.Go(func() error { return audioSub.Run(ctx) })
	g.Go(func() error { return tracker.Run(ctx) })
	g.Go(func() error { return store.Watch(ctx) })
	g.Go(func() error { return ipcServer.Run(ctx) })
	g.Go(func() error {
		err := loop.Run(ctx)
		stop() // a control-plane shutdown request also ends the other subsystems
		return err
	})

	logger.Info("pcpaneld started", "version", version, "config", *configPath, "socket", socketPath)

	if err := g.Wait(); err != nil {
		logger.Error("pcpaneld exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("pcpaneld stopped")
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}
}

func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
