// Package gwerr defines the gateway error taxonomy shared by the
// admission chain, profile resolution and the backend orchestrator.
package gwerr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeAccessDenied       Code = "ACCESS_DENIED"
	CodeQuotaExceeded      Code = "QUOTA_EXCEEDED"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeConfigNotFound     Code = "CONFIG_NOT_FOUND"
	CodeConfigParseError   Code = "CONFIG_PARSE_ERROR"
	CodeUpstreamTimeout    Code = "UPSTREAM_TIMEOUT"
	CodeUpstreamError      Code = "UPSTREAM_ERROR"
	CodeContentPolicyBlock Code = "CONTENT_POLICY_BLOCK"
	CodeValidationError    Code = "VALIDATION_ERROR"
)

type Error struct {
	Code    Code   `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithReason(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// As unwraps err into a gateway error, or wraps it as UPSTREAM_ERROR
// so handlers always have a code to respond with.
func As(err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return &Error{Code: CodeUpstreamError, Message: err.Error()}
}

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeQuotaExceeded, CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeConfigNotFound:
		return http.StatusNotFound
	case CodeConfigParseError:
		return http.StatusUnprocessableEntity
	case CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case CodeContentPolicyBlock:
		return http.StatusUnprocessableEntity
	case CodeValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
