package narrative

import "fmt"

// ProviderError is a structured error for text-generation failures. Retryable
// errors (timeouts, rate limits, 5xx) are retried within a tier's budget;
// everything else fails the tier immediately.
type ProviderError struct {
	Provider  string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
