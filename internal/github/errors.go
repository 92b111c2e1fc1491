package github

import "fmt"

// AuthError reports a failed App authentication: assertion signing,
// the token exchange call, or decoding its response.
type AuthError struct {
	Stage string
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github app authentication failed (%s): %v", e.Stage, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError reports a non-success status or decode failure from the
// repository API. Callers surface it upward unchanged.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error: %d - %s", e.StatusCode, e.Message)
}
