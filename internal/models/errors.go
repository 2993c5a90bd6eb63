package models

import "fmt"

// InvalidSourceError reports a document source URL that failed local
// validation. It is returned before any network call or registry mutation.
type InvalidSourceError struct {
	URL    string
	Reason string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid document source %q: %s", e.URL, e.Reason)
}
