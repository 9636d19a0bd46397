package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	// InvalidTicker is a caller input error; no lookup was attempted.
	InvalidTicker Code = "INVALID_TICKER"
	// TickerNotFound means the provider confirmed the symbol does not exist.
	TickerNotFound Code = "TICKER_NOT_FOUND"
	// RateLimited means the provider signalled throttling; callers should back off.
	RateLimited Code = "RATE_LIMITED"
	// ProviderUnavailable covers transient network failures and timeouts.
	ProviderUnavailable Code = "PROVIDER_UNAVAILABLE"
	Internal            Code = "INTERNAL"
)

type AppError struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap attaches a cause so callers can still reach it via errors.Is/As.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.cause }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case InvalidTicker:
		return http.StatusBadRequest
	case TickerNotFound:
		return http.StatusNotFound
	case RateLimited:
		return http.StatusTooManyRequests
	case ProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the Code from err, or Internal if err is not an AppError.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.code
	}
	return Internal
}
