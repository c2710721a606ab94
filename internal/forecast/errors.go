package forecast

import "fmt"

// ErrorCode distinguishes the fatal numeric-path failure kinds.
type ErrorCode string

const (
	// ErrData indicates malformed or unparseable transaction input.
	ErrData ErrorCode = "DATA_ERROR"
	// ErrInsufficientData indicates fewer than 6 raw transactions, or fewer
	// than 3 usable monthly points after cleaning.
	ErrInsufficientData ErrorCode = "INSUFFICIENT_DATA"
	// ErrForecastFailed indicates the model fit or horizon extraction failed.
	ErrForecastFailed ErrorCode = "FORECAST_FAILED"
	// ErrUnsupportedCurrency indicates a currency code absent from the rate table.
	ErrUnsupportedCurrency ErrorCode = "UNSUPPORTED_CURRENCY"
)

// Error is a structured pipeline error. Narrative-tier failures are never
// expressed as an Error; they are absorbed into the fallback narrative.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}
