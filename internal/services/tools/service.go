package tools

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/interfaces"
	"github.com/ternarybob/refero/internal/models"
)

// toolFunc executes a single tool operation against the services
type toolFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// Service routes named tool operations to the registry and dispatcher. The
// operation table is the host-agnostic core; stdio and HTTP adapters both
// drive the same handlers.
type Service struct {
	registry   interfaces.SourceRegistry
	dispatcher interfaces.QueryDispatcher
	handlers   map[string]toolFunc
	logger     arbor.ILogger
}

// NewService creates a new tool routing service
func NewService(registry interfaces.SourceRegistry, dispatcher interfaces.QueryDispatcher, logger arbor.ILogger) *Service {
	s := &Service{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}

	s.handlers = map[string]toolFunc{
		"set_document_source":             s.setDocumentSource,
		"list_document_sources":           s.listDocumentSources,
		"query_rag":                       s.queryRAG,
		"process_post_query":              s.processPostQuery,
		"load_document_sources_from_file": s.loadDocumentSourcesFromFile,
	}

	return s
}

// ListTools returns the available tool definitions
func (s *Service) ListTools(ctx context.Context) (*ToolList, error) {
	return &ToolList{
		Tools: []Tool{
			{
				Name:        "set_document_source",
				Description: "Register a new document source URL for RAG operations",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"url": map[string]interface{}{
							"type":        "string",
							"description": "URL of the document source",
						},
						"description": map[string]interface{}{
							"type":        "string",
							"description": "Optional description of the source",
						},
					},
					"required": []string{"url"},
				},
			},
			{
				Name:        "list_document_sources",
				Description: "List all registered document sources",
				InputSchema: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
			{
				Name:        "query_rag",
				Description: "Query the registered document sources using RAG",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "The search query",
						},
						"source_ids": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Optional source IDs to query (all sources when omitted)",
						},
					},
					"required": []string{"query"},
				},
			},
			{
				Name:        "process_post_query",
				Description: "POST a query payload to a webhook endpoint and return the response output",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "The query message to process",
						},
						"url": map[string]interface{}{
							"type":        "string",
							"description": "Optional endpoint URL (configured default when omitted)",
						},
					},
					"required": []string{"query"},
				},
			},
			{
				Name:        "load_document_sources_from_file",
				Description: "Load document sources from a JSON file into the registry",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"file_path": map[string]interface{}{
							"type":        "string",
							"description": "Path to the JSON file containing document sources",
						},
					},
					"required": []string{"file_path"},
				},
			},
		},
	}, nil
}

// CallTool executes a named tool with the given arguments
func (s *Service) CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	s.logger.Debug().Str("tool", name).Msg("Executing tool")

	text, err := handler(ctx, args)
	if err != nil {
		// Domain errors are returned to the agent as tool results, not
		// protocol failures
		return &ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		}, nil
	}

	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}, nil
}

func (s *Service) setDocumentSource(ctx context.Context, args map[string]interface{}) (string, error) {
	url, ok := args["url"].(string)
	if !ok || url == "" {
		return "", fmt.Errorf("url parameter is required")
	}
	description, _ := args["description"].(string)

	id, err := s.registry.Register(ctx, url, description)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Document source registered with ID: %s", id), nil
}

func (s *Service) listDocumentSources(ctx context.Context, args map[string]interface{}) (string, error) {
	listing := s.registry.List(ctx)
	if len(listing) == 0 {
		return "No document sources registered", nil
	}

	result := fmt.Sprintf("%d document source(s):", len(listing))
	for _, id := range models.SortedSourceIDs(listing) {
		result += fmt.Sprintf("\n%s: %s", id, listing[id])
	}
	return result, nil
}

func (s *Service) queryRAG(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("query parameter is required")
	}

	var sourceIDs []string
	if rawIDs, ok := args["source_ids"].([]interface{}); ok {
		for _, raw := range rawIDs {
			if id, ok := raw.(string); ok {
				sourceIDs = append(sourceIDs, id)
			}
		}
	}

	return s.dispatcher.Query(ctx, query, sourceIDs)
}

func (s *Service) processPostQuery(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("query parameter is required")
	}
	endpoint, _ := args["url"].(string)

	return s.dispatcher.Post(ctx, map[string]interface{}{"query": query}, endpoint)
}

func (s *Service) loadDocumentSourcesFromFile(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := args["file_path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("file_path parameter is required")
	}

	count, err := s.registry.LoadFromFile(ctx, path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully loaded %d document sources from %s", count, path), nil
}
