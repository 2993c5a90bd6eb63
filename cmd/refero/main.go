package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/common"
	"github.com/ternarybob/refero/internal/handlers"
	"github.com/ternarybob/refero/internal/server"
	"github.com/ternarybob/refero/internal/services/dispatch"
	"github.com/ternarybob/refero/internal/services/sources"
	"github.com/ternarybob/refero/internal/services/tools"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Refero version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Auto-discover config file if not specified
	configPath := *configFile
	if configPath == "" {
		if env := os.Getenv("REFERO_CONFIG"); env != "" {
			configPath = env
		} else if _, err := os.Stat("refero.toml"); err == nil {
			configPath = "refero.toml"
		}
	}

	// Startup sequence: config -> CLI overrides -> logger -> banner
	config, err := common.LoadFromFile(configPath)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger := common.InitLogger(config)

	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config_file", configPath).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("webhook_endpoint", config.Webhook.Endpoint).
		Msg("Application configuration loaded")

	// Initialize services
	registry := sources.NewService(logger)

	if config.Sources.Preload != "" {
		count, err := registry.LoadFromFile(context.Background(), config.Sources.Preload)
		if err != nil {
			logger.Fatal().Err(err).Str("path", config.Sources.Preload).Msg("Failed to preload document sources")
		}
		logger.Info().Int("count", count).Str("path", config.Sources.Preload).Msg("Preloaded document sources")
	}

	dispatcher := dispatch.NewService(registry, config, logger)
	toolService := tools.NewService(registry, dispatcher, logger)
	toolHandler := handlers.NewToolHandler(toolService, logger)

	// Create HTTP server
	srv := server.New(config, toolHandler, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
