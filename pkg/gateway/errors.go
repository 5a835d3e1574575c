package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code a failed gateway response carries
// in its errorCode field.
type ErrorCode string

// Token error codes understood by the refresh machinery. Any other value is
// a generic failure.
const (
	ErrorCodeNone                 ErrorCode = ""
	ErrorCodeAccessTokenExpired   ErrorCode = "ACCESS_TOKEN_EXPIRED"
	ErrorCodeRefreshTokenMissing  ErrorCode = "REFRESH_TOKEN_MISSING"
	ErrorCodeRefreshTokenMismatch ErrorCode = "REFRESH_TOKEN_MISMATCH"
	ErrorCodeTokenInvalid         ErrorCode = "TOKEN_INVALID"
)

// ForcesLogout reports whether the code means the session cannot be
// recovered and the host application should reset it.
func (c ErrorCode) ForcesLogout() bool {
	switch c {
	case ErrorCodeRefreshTokenMissing, ErrorCodeRefreshTokenMismatch, ErrorCodeTokenInvalid:
		return true
	default:
		return false
	}
}

// IsTokenCode reports whether the code is one of the four token codes.
func (c ErrorCode) IsTokenCode() bool {
	return c == ErrorCodeAccessTokenExpired || c.ForcesLogout()
}

// TransportError is returned by a Transport when the exchange failed: the
// server answered with a non-2xx status, or no answer was obtained at all
// (StatusCode 0).
type TransportError struct {
	StatusCode int
	Body       []byte
	Message    string
	Code       ErrorCode
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Code != ErrorCodeNone:
		return fmt.Sprintf("%s (status: %d, code: %s)", e.Message, e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
	}
}

// Unwrap returns the underlying network error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Envelope decodes the failed body as a backend envelope.
func (e *TransportError) Envelope() (*Envelope[json.RawMessage], bool) {
	if len(e.Body) == 0 {
		return nil, false
	}

	env, err := Decode[json.RawMessage](e.Body)
	if err != nil {
		return nil, false
	}

	return env, true
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrBaseAddressRequired  = errors.New("base address is required")
	ErrMalformedEnvelope    = errors.New("malformed response envelope")
	ErrUnknownTopology      = errors.New("unknown refresh topology")
	ErrRefreshNotConfigured = errors.New("refresh capability not configured")
	ErrUserIDRequired       = errors.New("user id is required")
)

// ErrorCodeOf extracts the gateway error code from err, or ErrorCodeNone.
func ErrorCodeOf(err error) ErrorCode {
	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return transportErr.Code
	}

	return ErrorCodeNone
}

// IsAccessTokenExpired reports whether err carries ACCESS_TOKEN_EXPIRED.
func IsAccessTokenExpired(err error) bool {
	return ErrorCodeOf(err) == ErrorCodeAccessTokenExpired
}

// StatusCodeOf returns the HTTP status of a failed exchange, or 0.
func StatusCodeOf(err error) int {
	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode
	}

	return 0
}

// errorCodeBody covers both places the gateway puts the code: top level and
// inside the errors object.
type errorCodeBody struct {
	ErrorCode ErrorCode       `json:"errorCode"`
	Errors    json.RawMessage `json:"errors"`
}

// ParseErrorCode reads errorCode from a response body, falling back to
// errors.errorCode. Unparseable bodies yield ErrorCodeNone.
func ParseErrorCode(body []byte) ErrorCode {
	if len(body) == 0 {
		return ErrorCodeNone
	}

	var parsed errorCodeBody

	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return ErrorCodeNone
	}

	if parsed.ErrorCode != ErrorCodeNone {
		return parsed.ErrorCode
	}

	if len(parsed.Errors) == 0 {
		return ErrorCodeNone
	}

	var nested struct {
		ErrorCode ErrorCode `json:"errorCode"`
	}

	err = json.Unmarshal(parsed.Errors, &nested)
	if err != nil {
		return ErrorCodeNone
	}

	return nested.ErrorCode
}

// ErrorDetails returns the errors field of a failed body for passing through
// to an envelope, or nil.
func ErrorDetails(err error) any {
	transportErr := &TransportError{}
	if !errors.As(err, &transportErr) {
		return nil
	}

	env, ok := transportErr.Envelope()
	if !ok || env.Errors == nil {
		return nil
	}

	return env.Errors
}

// ErrorMessage returns the backend message of a failed body, or "".
func ErrorMessage(err error) string {
	transportErr := &TransportError{}
	if !errors.As(err, &transportErr) {
		return ""
	}

	env, ok := transportErr.Envelope()
	if !ok {
		return ""
	}

	return env.Message
}
