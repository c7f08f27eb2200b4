package ocr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Kind classifies why an OCR operation failed.
type Kind string

const (
	KindUnsupportedFileType Kind = "unsupported_file_type"
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidRequest      Kind = "invalid_request"
	KindTransient           Kind = "transient"
	KindRateLimited         Kind = "rate_limited"
	KindBackendFault        Kind = "backend_fault"
	KindTimeout             Kind = "timeout"
	KindMalformedResponse   Kind = "malformed_response"
	KindCancelled           Kind = "cancelled"
)

// Retryable reports whether failures of this kind are worth another attempt.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransient, KindRateLimited, KindBackendFault, KindTimeout:
		return true
	}
	return false
}

// Error is a classified OCR failure. Every error crossing the backend client
// boundary is one of these; the retry policy reads Kind, Retryable, and the
// optional RetryAfter hint to decide what happens next.
type Error struct {
	Kind    Kind
	Message string
	// Retryable mirrors Kind.Retryable at construction time so an Error
	// remains self-describing even if serialized and rebuilt.
	Retryable bool
	// StatusCode is the backend HTTP status when one was received.
	StatusCode int
	// RetryAfter is the backend-provided retry hint, zero when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	detail := e.Message
	if e.StatusCode != 0 {
		detail = fmt.Sprintf("%s (status %d)", detail, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, detail)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error with the kind's default retryability.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: kind.Retryable()}
}

// WrapError builds a classified error around an underlying cause.
func WrapError(kind Kind, message string, err error) *Error {
	e := NewError(kind, message)
	e.Err = err
	return e
}

// AsError extracts a classified Error from err's chain.
func AsError(err error) (*Error, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// ClassifyStatus maps a backend HTTP status to the error taxonomy:
// 429 and 503 are rate limiting, other 5xx are backend faults, and any other
// 4xx is a non-retryable invalid request.
func ClassifyStatus(status int, body string, retryAfter time.Duration) *Error {
	message := strings.TrimSpace(body)
	if message == "" {
		message = http.StatusText(status)
	}
	var e *Error
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		e = NewError(KindRateLimited, message)
		e.RetryAfter = retryAfter
	case status >= http.StatusInternalServerError:
		e = NewError(KindBackendFault, message)
	default:
		e = NewError(KindInvalidRequest, message)
	}
	e.StatusCode = status
	return e
}

// Classify translates an arbitrary error into the taxonomy. Already-classified
// errors pass through unchanged; context expiry becomes Timeout or Cancelled;
// network failures become Transient.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if classified, ok := AsError(err); ok {
		return classified
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(KindTimeout, "deadline exceeded before backend responded", err)
	}
	if errors.Is(err, context.Canceled) {
		return WrapError(KindCancelled, "operation cancelled", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return WrapError(KindTimeout, "network timeout", err)
		}
		return WrapError(KindTransient, "network failure", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return WrapError(KindTimeout, "request timeout", err)
		}
		return WrapError(KindTransient, "connection failure", err)
	}
	return WrapError(KindTransient, "backend call failed", err)
}
