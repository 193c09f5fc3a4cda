package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine/sim"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/config"
)

// Version information
const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	dotenvPath := flag.String("env", ".env", "dotenv file loaded before the environment (missing file ignored)")
	scene := flag.String("scene", "", "Engine configuration / sim scene (overrides engine_config)")
	logFile := flag.String("log-file", "", "Write logs to this file (the terminal belongs to the UI)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bridge-monitor %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, *dotenvPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *scene != "" {
		cfg.EngineConfig = *scene
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	if *debug {
		level = slog.LevelDebug
	}
	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		out = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))

	bridge := sensorbridge.New(sim.New())
	model := newMonitorModel(bridge, cfg.EngineConfig, cfg.Retry.Backoff())

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("Monitor failed: %v", err)
	}
	if bridge.State() == sensorbridge.StateRunning {
		_ = bridge.Release()
	}
}
