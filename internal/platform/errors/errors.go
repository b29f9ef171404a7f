// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode defines supported error codes used across the bridge
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeConfig is for missing or placeholder consumer credentials
	ErrorCodeConfig

	// ErrorCodeProtocol is for non-success responses from the note provider
	ErrorCodeProtocol

	// ErrorCodeMalformedResponse is for provider responses missing required fields
	ErrorCodeMalformedResponse

	// ErrorCodeNetwork is for transport-level failures reaching the provider
	ErrorCodeNetwork

	// ErrorCodeAuthRequired is for operations needing a valid credential
	ErrorCodeAuthRequired

	// ErrorCodeNotFound is for resources absent upstream or in the cache
	ErrorCodeNotFound

	// ErrorCodeQuotaExceeded is for provider rate or quota limits
	ErrorCodeQuotaExceeded

	// ErrorCodeValidation is for caller-supplied arguments failing constraints
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing errors on tool arguments
	ErrorCodeJSON

	// ErrorCodeConflict is for state conflicts such as a consumed auth transaction
	ErrorCodeConflict
)

// HTTPStatusCode turns an ErrorCode into an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeAuthRequired:
		return http.StatusUnauthorized
	case ErrorCodeQuotaExceeded:
		return http.StatusTooManyRequests
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeProtocol, ErrorCodeMalformedResponse:
		return http.StatusBadGateway
	case ErrorCodeNetwork:
		return http.StatusServiceUnavailable
	case ErrorCodeConfig, ErrorCodePanic, ErrorCodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrNotFound is a sentinel not found error for convenience
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// status and body carry provider diagnostics for protocol failures
type Error struct {
	orig   error
	msg    string
	code   ErrorCode
	field  string
	op     string
	status int
	body   string
}

// Wire is the JSON-serializable form returned to the dispatch caller
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// UpstreamStatus returns the provider HTTP status, if recorded
func (e *Error) UpstreamStatus() int { return e.status }

// UpstreamBody returns the provider response body tail, if recorded
func (e *Error) UpstreamBody() string { return e.body }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error into a Wire payload with best-effort mapping
// If err is nil, returns the zero-value Wire (no error)
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Protocolf returns a protocol error carrying the upstream status and body tail
func Protocolf(status int, body string, format string, a ...any) error {
	return &Error{code: ErrorCodeProtocol, msg: fmt.Sprintf(format, a...), status: status, body: body}
}

// Sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Configf returns a configuration error
func Configf(format string, a ...any) error { return Newf(ErrorCodeConfig, format, a...) }

// MalformedResponsef returns a malformed provider response error
func MalformedResponsef(format string, a ...any) error {
	return Newf(ErrorCodeMalformedResponse, format, a...)
}

// Networkf returns a transport failure error
func Networkf(format string, a ...any) error { return Newf(ErrorCodeNetwork, format, a...) }

// AuthRequiredf returns an authentication required error
func AuthRequiredf(format string, a ...any) error { return Newf(ErrorCodeAuthRequired, format, a...) }

// QuotaExceededf returns a quota exceeded error
func QuotaExceededf(format string, a ...any) error {
	return Newf(ErrorCodeQuotaExceeded, format, a...)
}

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Conflictf returns a conflict error
func Conflictf(format string, a ...any) error { return Newf(ErrorCodeConflict, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// HTTP bundles status + wire in one shot (nice for handlers)
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}
