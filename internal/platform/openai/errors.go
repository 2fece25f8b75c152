package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindRateLimited ErrorKind = "rate_limited"
	KindAuth        ErrorKind = "auth"
	KindBadRequest  ErrorKind = "bad_request"
	KindRefused     ErrorKind = "refused"
	KindMalformed   ErrorKind = "malformed"
)

// Error classifies every failure surfaced by Client. Callers treat all kinds
// the same way (degrade to a deterministic default); the kind is for logs
// and metrics.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Model      string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	parts := []string{"openai", string(e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf returns the kind of an *Error anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func classifyError(err error, model string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindUnavailable, Model: model, Message: "request aborted", Cause: err}
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: kindForStatus(apiErr.HTTPStatusCode), StatusCode: apiErr.HTTPStatusCode, Model: model, Message: apiErr.Message, Cause: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: kindForStatus(reqErr.HTTPStatusCode), StatusCode: reqErr.HTTPStatusCode, Model: model, Message: "request failed", Cause: err}
	}
	return &Error{Kind: KindUnavailable, Model: model, Message: "transport error", Cause: err}
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code >= 400 && code < 500:
		return KindBadRequest
	default:
		return KindUnavailable
	}
}
