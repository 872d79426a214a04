package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/frame-annotator/app"
	"github.com/soocke/frame-annotator/assets"
	"github.com/soocke/frame-annotator/config"
)

func main() {
	cfgPath := flag.String("config", "annotator.yaml", "config file (.yaml, .yml or .json)")
	backendURL := flag.String("backend", "", "backend base url, overrides the config file")
	debugFlag := flag.Bool("debug", false, "debug logging and process monitor")
	initFlag := flag.Bool("init", false, "write a starter config to -config and exit")
	flag.Parse()

	if *initFlag {
		if err := assets.WriteExampleConfig(*cfgPath); err != nil {
			NewLogger(slog.LevelInfo).Error("init config", "error", err)
			os.Exit(1)
		}
		return
	}

	// Base config from file, falling back to defaults
	cfg, err := config.Load(*cfgPath)
	if *backendURL != "" {
		cfg.BackendURL = *backendURL
	}
	if *debugFlag {
		cfg.Debug = true
	}
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("config not loaded, using defaults", "path", *cfgPath, "error", err)
	}

	application, err := app.NewApp("Frame Annotator", cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application.Start()
}
