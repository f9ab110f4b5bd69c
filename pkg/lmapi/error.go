package lmapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a portal API failure.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"     // transient transport or 5xx failure, retried
	KindAuth       ErrorKind = "auth"        // credentials rejected, never retried
	KindNotFound   ErrorKind = "not_found"   // resource or lookup target does not exist
	KindConflict   ErrorKind = "conflict"    // duplicate name or concurrent modification
	KindValidation ErrorKind = "validation"  // request rejected as malformed
	KindRateLimit  ErrorKind = "rate_limit"  // throttled, retried
	KindUnknown    ErrorKind = "unknown"
)

// Error is the structured failure surfaced by the API client. Status is
// the HTTP status code (0 when the request never produced a response),
// Code the portal's errorCode when one was returned.
type Error struct {
	Kind    ErrorKind
	Status  int
	Code    int
	Op      string
	Message string
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Message)
	case e.Code != 0:
		return fmt.Sprintf("%s: %s error (status %d, code %d): %s", e.Op, e.Kind, e.Status, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether re-issuing the request could change the
// outcome. Definitive rejections (4xx other than 429) are not retried.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindRateLimit
}

// classify maps an HTTP status and portal error code onto an ErrorKind.
//
// The portal reports duplicate names either as HTTP 409 or as errorCode
// 1400/1409 in the body; 1404 mirrors HTTP 404.
func classify(status, code int) ErrorKind {
	switch code {
	case 1400, 1409:
		return KindConflict
	case 1404:
		return KindNotFound
	}
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status == 429:
		return KindRateLimit
	case status == 400 || status == 422:
		return KindValidation
	case status >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}

// KindOf returns the classification of err, or KindUnknown for errors
// not produced by this package.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a NotFound-classified API error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err is a Conflict-classified API error.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsAuth reports whether err is an Auth-classified API error.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
