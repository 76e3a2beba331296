// Package inference defines the boundary to remote model backends and the
// Anthropic-backed implementation of it. This is the sole network boundary
// of the routing core.
package inference

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies an invocation failure for retry policy purposes.
type ErrorKind string

const (
	// KindRateLimited indicates the backend throttled the request.
	KindRateLimited ErrorKind = "rate_limited"
	// KindTimeout indicates the per-call deadline elapsed.
	KindTimeout ErrorKind = "timeout"
	// KindProviderError indicates a transient backend failure.
	KindProviderError ErrorKind = "provider_error"
	// KindInvalidModel indicates the model id is unknown to the backend.
	KindInvalidModel ErrorKind = "invalid_model"
)

// InvocationError is a classified invocation failure.
type InvocationError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// NewError wraps err with a classification.
func NewError(kind ErrorKind, err error) *InvocationError {
	return &InvocationError{Kind: kind, Err: err}
}

// KindOf returns the classification of err, or an empty kind if err is not
// an InvocationError.
func KindOf(err error) ErrorKind {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// IsRetryable reports whether err is a transient failure worth retrying on
// the same model. Rate limits are not retryable on the same model; they
// trigger a tier downgrade instead.
func IsRetryable(err error) bool {
	kind := KindOf(err)
	return kind == KindTimeout || kind == KindProviderError
}

// Response is the outcome of one model invocation.
type Response struct {
	// Text is the model output.
	Text string
	// TokensUsed is the total token count (input plus output).
	TokensUsed int64
	// CostIncurred is the USD cost of the call.
	CostIncurred float64
}

// Client invokes a chosen model. Implementations block on network I/O and
// must honor ctx cancellation and deadlines.
type Client interface {
	Invoke(ctx context.Context, modelID, prompt string, maxTokens int) (Response, error)
}
