package dispatch

import "fmt"

// TransportError reports a network-level failure (timeout, connection
// refused, DNS) during an outbound call. The underlying cause is wrapped.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure calling %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError reports a non-2xx response from the endpoint. Body holds
// a truncated snippet of the response for diagnosis.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError reports a response body that does not match the
// expected [{"output": ...}] envelope shape.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Detail)
}
