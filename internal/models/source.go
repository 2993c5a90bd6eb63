package models

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Payload field names recognized by webhook endpoints. The documented
// external contract uses "chatInput"; the internal default payload uses
// "query".
const (
	PayloadFieldChatInput = "chatInput"
	PayloadFieldQuery     = "query"
)

// DocumentSource represents a registered document source URL
type DocumentSource struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Validate checks that the source URL is an absolute URL with a scheme and host
func (s *DocumentSource) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return &InvalidSourceError{URL: s.URL, Reason: "url is required"}
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return &InvalidSourceError{URL: s.URL, Reason: err.Error()}
	}

	if u.Scheme == "" || u.Host == "" {
		return &InvalidSourceError{URL: s.URL, Reason: "url must be absolute with a scheme and host"}
	}

	return nil
}

// SortedSourceIDs returns the listing's IDs in numeric order
func SortedSourceIDs(listing map[string]string) []string {
	ids := make([]string, 0, len(listing))
	for id := range listing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

// QueryPayload carries the natural-language request text for a dispatch call
type QueryPayload struct {
	Query string `json:"query"`
}

// Validate checks that the query text is non-empty
func (p *QueryPayload) Validate() error {
	if strings.TrimSpace(p.Query) == "" {
		return fmt.Errorf("query text is required")
	}
	return nil
}

// Body returns the wire payload keyed by the given field name. Unrecognized
// field names fall back to the default "chatInput" key.
func (p *QueryPayload) Body(field string) map[string]interface{} {
	if field != PayloadFieldChatInput && field != PayloadFieldQuery {
		field = PayloadFieldChatInput
	}
	return map[string]interface{}{field: p.Query}
}
