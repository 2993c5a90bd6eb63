package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/interfaces"
)

// handleSetDocumentSource implements the set_document_source tool
func handleSetDocumentSource(registry interfaces.SourceRegistry, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil || url == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: url parameter is required"),
				},
			}, nil
		}

		description := request.GetString("description", "")

		id, err := registry.Register(ctx, url, description)
		if err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("Source registration rejected")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Document source registered with ID: %s", id)),
			},
		}, nil
	}
}

// handleListDocumentSources implements the list_document_sources tool
func handleListDocumentSources(registry interfaces.SourceRegistry, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		listing := registry.List(ctx)

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatSourceList(listing)),
			},
		}, nil
	}
}

// handleLoadDocumentSources implements the load_document_sources_from_file tool
func handleLoadDocumentSources(registry interfaces.SourceRegistry, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("file_path")
		if err != nil || path == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: file_path parameter is required"),
				},
			}, nil
		}

		count, err := registry.LoadFromFile(ctx, path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Source file load failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Successfully loaded %d document sources from %s", count, path)),
			},
		}, nil
	}
}

// handleQueryRAG implements the query_rag tool
func handleQueryRAG(dispatcher interfaces.QueryDispatcher, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		sourceIDs := request.GetStringSlice("source_ids", nil)

		answer, err := dispatcher.Query(ctx, query, sourceIDs)
		if err != nil {
			logger.Error().Err(err).Msg("RAG query failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Query error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(answer),
			},
		}, nil
	}
}

// handleProcessPostQuery implements the process_post_query tool
func handleProcessPostQuery(dispatcher interfaces.QueryDispatcher, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		endpoint := request.GetString("url", "")

		output, err := dispatcher.Post(ctx, map[string]interface{}{"query": query}, endpoint)
		if err != nil {
			logger.Error().Err(err).Str("endpoint", endpoint).Msg("POST query failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error processing query: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(output),
			},
		}, nil
	}
}

// handleRAGQueryPrompt implements the rag_query_prompt prompt
func handleRAGQueryPrompt(registry interfaces.SourceRegistry) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		query := request.Params.Arguments["query"]
		if query == "" {
			return nil, fmt.Errorf("query argument is required")
		}

		text := formatRAGPrompt(query, registry.List(ctx))

		return mcp.NewGetPromptResult(
			"RAG query prompt",
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
			},
		), nil
	}
}
