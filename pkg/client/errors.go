package client

import (
	"errors"
	"fmt"
)

// Error codes carried in a 403 body's detail.error field.
const (
	CodeFeatureLocked     = "feature_locked"
	CodeSpellLimitReached = "spell_limit_reached"
)

// ErrAlreadyOnWaitlist is returned when the email is already registered.
var ErrAlreadyOnWaitlist = errors.New("already on the waitlist")

// ErrMalformedResponse is returned when a 2xx body lacks what the endpoint
// promises. It classifies as KindUnexpected.
var ErrMalformedResponse = errors.New("malformed response")

// HTTPError represents a non-2xx HTTP response from the API.
// Code is the structured detail.error field when the body carried one.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// ErrorKind is the class of failure callers branch on.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindUnauthorized means the caller should log in again.
	KindUnauthorized
	// KindFeatureLocked is a 403 feature_locked tier restriction.
	KindFeatureLocked
	// KindQuotaExceeded is a 403 spell_limit_reached tier restriction.
	KindQuotaExceeded
	// KindForbidden is any other 403.
	KindForbidden
	// KindUnexpected covers network failures, 5xx and malformed payloads.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthorized:
		return "unauthorized"
	case KindFeatureLocked:
		return "feature_locked"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindForbidden:
		return "forbidden"
	default:
		return "unexpected"
	}
}

// Classify maps an error returned by the client to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return KindUnexpected
	}
	switch httpErr.StatusCode {
	case 401:
		return KindUnauthorized
	case 403:
		switch httpErr.Code {
		case CodeFeatureLocked:
			return KindFeatureLocked
		case CodeSpellLimitReached:
			return KindQuotaExceeded
		}
		return KindForbidden
	}
	return KindUnexpected
}

// Reason returns the 403 reason code and server message, if err carries one.
func Reason(err error) (code, message string, ok bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == 403 {
		return httpErr.Code, httpErr.Message, true
	}
	return "", "", false
}
