package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/refero/internal/models"
)

// formatSourceList formats the registry listing as markdown
func formatSourceList(listing map[string]string) string {
	if len(listing) == 0 {
		return "No document sources registered."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Document Sources (%d)\n\n", len(listing)))
	for _, id := range models.SortedSourceIDs(listing) {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", id, listing[id]))
	}
	return sb.String()
}

// formatRAGPrompt renders the RAG query prompt template
func formatRAGPrompt(query string, listing map[string]string) string {
	var sb strings.Builder
	sb.WriteString("Please help me find information about the following query:\n")
	sb.WriteString(fmt.Sprintf("Query: %s\n\n", query))
	sb.WriteString("Available document sources:\n")

	if len(listing) == 0 {
		sb.WriteString("(none registered)\n")
	} else {
		for _, id := range models.SortedSourceIDs(listing) {
			sb.WriteString(fmt.Sprintf("%s: %s\n", id, listing[id]))
		}
	}

	sb.WriteString("\nHow would you like to proceed with the search?")
	return sb.String()
}
