package gateway

import (
	"encoding/json"
	"fmt"
)

// Default envelope values.
const (
	DefaultSuccessMessage   = "Success"
	DefaultUnhandledMessage = "Something went wrong"

	DefaultSuccessStatus   = 200
	DefaultHandledStatus   = 400
	UnhandledErrorStatus   = 500
	firstErrorStatusCode   = 400
	envelopeKindUnresolved = Kind(0)
)

// Kind identifies which of the three envelope variants a value is.
type Kind int

const (
	// KindSuccess is a completed call that returned a payload.
	KindSuccess Kind = iota + 1
	// KindHandledError is a business failure reported inside a well-formed
	// backend envelope.
	KindHandledError
	// KindUnhandledError is a failure where no backend envelope could be
	// obtained (network error, timeout, malformed body).
	KindUnhandledError
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHandledError:
		return "handled_error"
	case KindUnhandledError:
		return "unhandled_error"
	default:
		return "unknown"
	}
}

// Envelope is the uniform result shape every gateway call normalizes into.
//
// Data is nil whenever Success is false.
type Envelope[T any] struct {
	Success    bool   `json:"success"          yaml:"success"`
	Message    string `json:"message"          yaml:"message"`
	Data       *T     `json:"data,omitempty"   yaml:"data,omitempty"`
	StatusCode int    `json:"statusCode"       yaml:"status_code"`
	Meta       any    `json:"meta,omitempty"   yaml:"meta,omitempty"`
	Errors     any    `json:"errors,omitempty" yaml:"errors,omitempty"`

	kind Kind
}

// Kind reports the envelope variant. Envelopes decoded from a backend body
// are either KindSuccess or KindHandledError.
func (e *Envelope[T]) Kind() Kind {
	if e.kind != envelopeKindUnresolved {
		return e.kind
	}

	if e.Success {
		return KindSuccess
	}

	return KindHandledError
}

// IsError reports whether the envelope is one of the two error variants.
func (e *Envelope[T]) IsError() bool {
	return !e.Success
}

// Value returns the payload or the zero value of T when absent.
func (e *Envelope[T]) Value() T {
	var zero T
	if e == nil || e.Data == nil {
		return zero
	}

	return *e.Data
}

type envelopeOptions struct {
	message    string
	statusCode int
	meta       any
	errors     any
}

// EnvelopeOption overrides a default of Success or HandledError.
type EnvelopeOption func(*envelopeOptions)

// WithMessage overrides the envelope message.
func WithMessage(message string) EnvelopeOption {
	return func(o *envelopeOptions) {
		o.message = message
	}
}

// WithStatusCode overrides the envelope status code.
func WithStatusCode(code int) EnvelopeOption {
	return func(o *envelopeOptions) {
		o.statusCode = code
	}
}

// WithMeta attaches pagination or other metadata.
func WithMeta(meta any) EnvelopeOption {
	return func(o *envelopeOptions) {
		o.meta = meta
	}
}

// WithErrors attaches structured error details. Ignored by Success.
func WithErrors(errs any) EnvelopeOption {
	return func(o *envelopeOptions) {
		o.errors = errs
	}
}

// Success builds a successful envelope. Message defaults to "Success" and
// status to 200.
func Success[T any](data T, opts ...EnvelopeOption) *Envelope[T] {
	o := envelopeOptions{message: DefaultSuccessMessage, statusCode: DefaultSuccessStatus}
	for _, opt := range opts {
		opt(&o)
	}

	return &Envelope[T]{
		Success:    true,
		Message:    o.message,
		Data:       &data,
		StatusCode: o.statusCode,
		Meta:       o.meta,
		kind:       KindSuccess,
	}
}

// HandledError builds an envelope for a business failure the backend
// reported. Status defaults to 400.
func HandledError[T any](message string, opts ...EnvelopeOption) *Envelope[T] {
	o := envelopeOptions{message: message, statusCode: DefaultHandledStatus}
	for _, opt := range opts {
		opt(&o)
	}

	return &Envelope[T]{
		Success:    false,
		Message:    o.message,
		StatusCode: o.statusCode,
		Meta:       o.meta,
		Errors:     o.errors,
		kind:       KindHandledError,
	}
}

// UnhandledError builds an envelope for a failure where no backend envelope
// was obtained. Status is always 500.
func UnhandledError[T any](message string, errs any) *Envelope[T] {
	if message == "" {
		message = DefaultUnhandledMessage
	}

	return &Envelope[T]{
		Success:    false,
		Message:    message,
		StatusCode: UnhandledErrorStatus,
		Errors:     errs,
		kind:       KindUnhandledError,
	}
}

// Failure re-types a failed envelope, keeping its variant, message, status,
// errors and meta. Calling it on a successful envelope yields a handled
// error with the same message.
func Failure[T, U any](env *Envelope[U]) *Envelope[T] {
	kind := env.Kind()
	if kind == KindSuccess {
		kind = KindHandledError
	}

	return &Envelope[T]{
		Success:    false,
		Message:    env.Message,
		StatusCode: env.StatusCode,
		Meta:       env.Meta,
		Errors:     env.Errors,
		kind:       kind,
	}
}

// Decode parses a backend envelope. A failed envelope never carries data,
// whatever the body contained.
func Decode[T any](body []byte) (*Envelope[T], error) {
	var env Envelope[T]

	err := json.Unmarshal(body, &env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	if !env.Success {
		env.Data = nil
	}

	if env.StatusCode == 0 {
		if env.Success {
			env.StatusCode = DefaultSuccessStatus
		} else {
			env.StatusCode = DefaultHandledStatus
		}
	}

	return &env, nil
}

// IsErrorStatus reports whether a status code is in the error class.
func IsErrorStatus(code int) bool {
	return code >= firstErrorStatusCode
}
