package service

import "fmt"

// UpstreamCallError means the generative model could not be reached or
// returned no usable text.
type UpstreamCallError struct {
	Provider string
	Err      error
}

func (e *UpstreamCallError) Error() string {
	return fmt.Sprintf("upstream model call failed (%s): %v", e.Provider, e.Err)
}

func (e *UpstreamCallError) Unwrap() error { return e.Err }

// ResponseParseError means the model replied but the reply did not hold the
// expected JSON payload.
type ResponseParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ResponseParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse model response: %s: %v", e.Reason, e.Err)
	}
	return "could not parse model response: " + e.Reason
}

func (e *ResponseParseError) Unwrap() error { return e.Err }
