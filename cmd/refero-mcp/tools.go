package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSetDocumentSourceTool returns the set_document_source tool definition
func createSetDocumentSourceTool() mcp.Tool {
	return mcp.NewTool("set_document_source",
		mcp.WithDescription("Register a new document source URL for RAG operations"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the document source (absolute, with scheme and host)"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description of the source"),
		),
	)
}

// createListDocumentSourcesTool returns the list_document_sources tool definition
func createListDocumentSourcesTool() mcp.Tool {
	return mcp.NewTool("list_document_sources",
		mcp.WithDescription("List all registered document sources with their IDs"),
	)
}

// createLoadDocumentSourcesTool returns the load_document_sources_from_file tool definition
func createLoadDocumentSourcesTool() mcp.Tool {
	return mcp.NewTool("load_document_sources_from_file",
		mcp.WithDescription("Load document sources from a JSON file into the registry"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the JSON file containing document sources"),
		),
	)
}

// createQueryRAGTool returns the query_rag tool definition
func createQueryRAGTool() mcp.Tool {
	return mcp.NewTool("query_rag",
		mcp.WithDescription("Query the registered document sources using RAG"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithArray("source_ids",
			mcp.WithStringItems(),
			mcp.Description("Optional source IDs to query (all sources when omitted)"),
		),
	)
}

// createProcessPostQueryTool returns the process_post_query tool definition
func createProcessPostQueryTool() mcp.Tool {
	return mcp.NewTool("process_post_query",
		mcp.WithDescription("POST a query payload to a webhook endpoint and return the response output"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The query message to process"),
		),
		mcp.WithString("url",
			mcp.Description("Optional endpoint URL (configured default when omitted)"),
		),
	)
}

// createRAGQueryPrompt returns the rag_query_prompt prompt definition
func createRAGQueryPrompt() mcp.Prompt {
	return mcp.NewPrompt("rag_query_prompt",
		mcp.WithPromptDescription("Create a prompt template for RAG queries against the registered sources"),
		mcp.WithArgument("query",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("The query to research"),
		),
	)
}
