package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine/sim"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/backoff"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/config"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/luahost"
)

// Version information
const version = "v0.1.0"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	dotenvPath := flag.String("env", ".env", "dotenv file loaded before the environment (missing file ignored)")
	scene := flag.String("scene", "", "Engine configuration / sim scene (overrides engine_config)")
	cycles := flag.Int("cycles", 0, "Cycles to run (0 = until interrupted, overrides config)")
	outputDir := flag.String("output", "", "Directory to save depth and color frames (optional)")
	outputFormat := flag.String("format", "", "Color output format: png, jpeg")
	saveEvery := flag.Int("save-every", 0, "Save one frame every N cycles")
	record := flag.String("record", "", "Write a msgpack skeleton recording of the scene and exit")
	script := flag.String("lua", "", "Lua script that drives the bridge instead of the built-in loop")
	statsInterval := flag.Int("stats-interval", 10, "Seconds between stats reports (0 = no periodic stats)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	logJSON := flag.Bool("log-json", false, "Log as JSON")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bridge-capture %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, *dotenvPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.EngineConfig = *scene
		case "cycles":
			cfg.Cycles = *cycles
		case "output":
			cfg.Output.Dir = *outputDir
		case "format":
			cfg.Output.Format = *outputFormat
		case "save-every":
			cfg.Output.SaveEvery = *saveEvery
		case "record":
			cfg.Output.Record = *record
		case "lua":
			cfg.Script = *script
		case "debug":
			if *debug {
				cfg.Log.Level = "debug"
			}
		case "log-json":
			cfg.Log.JSON = *logJSON
		}
	})
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(cfg.Log)

	eng := sim.New()

	if cfg.Output.Record != "" {
		if err := writeRecording(eng, cfg); err != nil {
			log.Fatalf("Failed to write recording: %v", err)
		}
		return
	}

	bridge := sensorbridge.New(eng)

	if cfg.Script != "" {
		host := luahost.New(bridge)
		slog.Info("sensor-bridge: running lua script", "script", cfg.Script)
		if err := host.DoFile(cfg.Script); err != nil {
			log.Fatalf("Lua script failed: %v", err)
		}
		printFinalStats(bridge, 0)
		fmt.Printf("═══════════════════════════════════════════════════════════\n\n")
		return
	}

	channels, _ := config.ParseChannels(cfg.Channels)
	sink, err := newCaptureSink(cfg.Output)
	if err != nil {
		log.Fatalf("Failed to prepare output: %v", err)
	}
	sink.subscribe(bridge, channels)

	printBanner(cfg, channels)

	if err := bridge.Init(cfg.EngineConfig); err != nil {
		log.Fatalf("Failed to initialize bridge: %v", err)
	}
	defer func() {
		if err := bridge.Release(); err != nil {
			slog.Error("sensor-bridge: release failed", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startTime := time.Now()
	statsC, stopStats := statsTicks(*statsInterval)
	defer stopStats()

	var retry backoff.State
	retryCfg := cfg.Retry.Backoff()
	isTransient := func(err error) bool { return errors.Is(err, sensorbridge.ErrEngine) }

	for cycle := 1; cfg.Cycles == 0 || cycle <= cfg.Cycles; cycle++ {
		select {
		case <-ctx.Done():
			fmt.Printf("\n\nReceived interrupt signal, shutting down...\n")
			goto shutdown
		case <-statsC:
			printStats(bridge, sink, time.Since(startTime))
		default:
		}

		sink.cycle = cycle
		err := backoff.Run(ctx, func(context.Context) error { return bridge.Update() }, isTransient, retryCfg, &retry)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			goto shutdown
		case errors.Is(err, sensorbridge.ErrLicense):
			slog.Error("sensor-bridge: license not acquired, stopping", "error", err)
			goto shutdown
		default:
			slog.Error("sensor-bridge: update failed", "cycle", cycle, "error", err)
			goto shutdown
		}
	}

shutdown:
	printFinalStats(bridge, retry.Retries.Load())
	fmt.Printf("  Frames Saved:       %d\n", sink.saved)
	fmt.Printf("  Save Failures:      %d\n", sink.failed)
	fmt.Printf("  Uptime:             %s\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("═══════════════════════════════════════════════════════════\n\n")
	slog.Info("sensor-bridge: capture completed")
}

func setupLogging(cfg config.LogConfig) {
	level, _ := config.ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func writeRecording(eng *sim.Engine, cfg *config.Config) error {
	scene := eng.Scene()
	if cfg.EngineConfig != "" {
		loaded, err := sim.LoadScene(cfg.EngineConfig)
		if err != nil {
			return err
		}
		scene = loaded
	}
	n := cfg.Cycles
	if n == 0 {
		n = scene.Depth.FPS * 10
	}
	rec, err := sim.Record(scene, n)
	if err != nil {
		return err
	}
	if err := sim.SaveRecording(cfg.Output.Record, rec); err != nil {
		return err
	}
	slog.Info("sensor-bridge: recording written",
		"path", cfg.Output.Record,
		"frames", len(rec.Frames),
		"fps", rec.FPS,
	)
	return nil
}

func printBanner(cfg *config.Config, channels []sensorbridge.Channel) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║         Sensor Bridge Capture - Orion 2.0 Module          ║\n")
	fmt.Printf("║                      Version %s                       ║\n", version)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Instance:      %s\n", cfg.InstanceID)
	if cfg.EngineConfig != "" {
		fmt.Printf("  Engine Config: %s\n", cfg.EngineConfig)
	} else {
		fmt.Printf("  Engine Config: (engine default)\n")
	}
	fmt.Printf("  Channels:      %v\n", channels)
	if cfg.Output.Dir != "" {
		fmt.Printf("  Output Dir:    %s (every %d cycles, %s)\n", cfg.Output.Dir, cfg.Output.SaveEvery, cfg.Output.Format)
	} else {
		fmt.Printf("  Output Dir:    (none - frames not saved)\n")
	}
	if cfg.Cycles > 0 {
		fmt.Printf("  Cycles:        %d\n", cfg.Cycles)
	} else {
		fmt.Printf("  Cycles:        unlimited\n")
	}
	fmt.Printf("\n")
}

func printStats(bridge *sensorbridge.Bridge, sink *captureSink, uptime time.Duration) {
	st := bridge.Stats()
	cs := bridge.CycleStats()

	fmt.Printf("\n")
	fmt.Printf("╭─────────────────────────────────────────────────────────╮\n")
	fmt.Printf("│ Bridge Statistics (Uptime: %s)\n", uptime.Round(time.Second))
	fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
	fmt.Printf("│ Cycles:             %6d\n", st.Cycles)
	fmt.Printf("│ Rate:               %6.2f Hz (stable: %v)\n", cs.RateMean, cs.IsStable)
	fmt.Printf("│ Update Mean/P95:    %6.2f / %.2f ms\n", cs.UpdateMeanMS, cs.UpdateP95MS)
	fmt.Printf("│ Frames Saved:       %6d\n", sink.saved)
	if st.EngineErrors+st.LicenseErrors > 0 {
		fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
		fmt.Printf("│ Engine Errors:      %6d\n", st.EngineErrors)
		fmt.Printf("│ License Errors:     %6d\n", st.LicenseErrors)
	}
	fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
	for _, ch := range sensorbridge.Channels() {
		c := st.Channel(ch)
		if c.Dispatched == 0 && c.Built == 0 {
			continue
		}
		fmt.Printf("│ %-10s dispatched %6d  copied %8.2f MB\n", ch, c.Dispatched, float64(c.BytesCopied)/1024/1024)
	}
	fmt.Printf("╰─────────────────────────────────────────────────────────╯\n")
	fmt.Printf("\n")
}

func printFinalStats(bridge *sensorbridge.Bridge, retries uint32) {
	st := bridge.Stats()
	cs := bridge.CycleStats()

	fmt.Printf("\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("                     Final Statistics                      \n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("  Session:            %s\n", st.SessionID)
	fmt.Printf("  Cycles:             %d\n", st.Cycles)
	fmt.Printf("  Average Rate:       %.2f Hz\n", cs.RateMean)
	fmt.Printf("  Engine Errors:      %d\n", st.EngineErrors)
	fmt.Printf("  License Errors:     %d\n", st.LicenseErrors)
	fmt.Printf("  Retries:            %d\n", retries)
}

// statsTicks returns the periodic stats channel. A non-positive interval
// disables periodic stats: the channel is nil and never fires.
func statsTicks(seconds int) (<-chan time.Time, func()) {
	if seconds <= 0 {
		return nil, func() {}
	}
	ticker := time.NewTicker(time.Duration(seconds) * time.Second)
	return ticker.C, ticker.Stop
}
