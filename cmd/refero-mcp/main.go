package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/refero/internal/common"
	"github.com/ternarybob/refero/internal/services/dispatch"
	"github.com/ternarybob/refero/internal/services/sources"
)

func main() {
	// Load configuration
	configPath := os.Getenv("REFERO_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("refero.toml"); err == nil {
			configPath = "refero.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	// Initialize source registry
	registry := sources.NewService(logger)

	// Preload document sources if configured
	if config.Sources.Preload != "" {
		count, err := registry.LoadFromFile(context.Background(), config.Sources.Preload)
		if err != nil {
			logger.Fatal().Err(err).Str("path", config.Sources.Preload).Msg("Failed to preload document sources")
		}
		logger.Info().Int("count", count).Msg("Preloaded document sources")
	}

	// Initialize query dispatcher
	dispatcher := dispatch.NewService(registry, config, logger)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"refero",
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
	)

	// Register document source tools
	mcpServer.AddTool(createSetDocumentSourceTool(), handleSetDocumentSource(registry, logger))
	mcpServer.AddTool(createListDocumentSourcesTool(), handleListDocumentSources(registry, logger))
	mcpServer.AddTool(createLoadDocumentSourcesTool(), handleLoadDocumentSources(registry, logger))

	// Register query tools
	mcpServer.AddTool(createQueryRAGTool(), handleQueryRAG(dispatcher, logger))
	mcpServer.AddTool(createProcessPostQueryTool(), handleProcessPostQuery(dispatcher, logger))

	// Register prompts
	mcpServer.AddPrompt(createRAGQueryPrompt(), handleRAGQueryPrompt(registry))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
