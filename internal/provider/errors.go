package provider

import "fmt"

// ErrNotConfigured is returned when the remote provider endpoint or
// credential is missing. It is fatal to the current request, not the process.
var ErrNotConfigured = fmt.Errorf("provider: base_url or token not configured")

// ConnectivityError wraps a transport failure: the provider was unreachable
// or the bounded timeout elapsed. Callers surface it as a retryable 500,
// never as a successful empty response.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("provider: unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
