package interfaces

import (
	"context"

	"github.com/ternarybob/refero/internal/models"
)

// QueryDispatcher translates queries and payloads into outbound webhook
// calls and unwraps the standardized response envelope.
type QueryDispatcher interface {
	// Query resolves applicable sources and composes a single answer
	// string. Querying an empty or non-matching registry returns a
	// defined "no sources" result, never an error. Transport failures
	// across all resolved sources surface as an error.
	Query(ctx context.Context, query string, sourceIDs []string) (string, error)

	// Post sends a single synchronous JSON POST to the endpoint (the
	// configured default when empty) and returns the unwrapped "output"
	// string from the [{"output": ...}] response envelope.
	Post(ctx context.Context, payload map[string]interface{}, endpoint string) (string, error)
}

// Composer produces one answer string from a query and a set of resolved
// sources. The composition strategy is pluggable; the default fans out the
// webhook call to each source and joins the per-source answers.
type Composer interface {
	Compose(ctx context.Context, query string, sources []*models.DocumentSource) (string, error)
}
