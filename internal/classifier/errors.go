package classifier

import "fmt"

// AuthError is returned when no completion credential is configured
type AuthError struct {
	Provider string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s API key is not configured", e.Provider)
}

// UpstreamError carries a non-success completion response or a malformed body
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return "completion request failed: " + e.Err.Error()
	default:
		return "malformed completion response: " + e.Body
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// FormatError is returned when the model reply has no parsable JSON object
type FormatError struct {
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model reply is not a JSON object (%v): %q", e.Err, e.Text)
	}
	return fmt.Sprintf("model reply has no JSON object: %q", e.Text)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
