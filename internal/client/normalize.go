package client

import (
	"errors"

	"github.com/quillpost/gateway-client/pkg/gateway"
)

// normalize turns the outcome of one gateway call into an envelope.
//
// A completed call yields the backend envelope (a failed one keeps its
// message, status, errors and meta). A non-2xx answer that still carries a
// backend envelope is a handled error; everything else (no answer, timeout,
// unparseable body) is an unhandled error. fallback replaces empty
// messages.
func normalize[T any](resp *gateway.Response, err error, fallback string) *gateway.Envelope[T] {
	if err != nil {
		return fromError[T](err, fallback)
	}

	if resp == nil || len(resp.Body) == 0 {
		var zero T

		return gateway.Success(zero, gateway.WithStatusCode(statusOf(resp)))
	}

	env, err := gateway.Decode[T](resp.Body)
	if err != nil {
		return gateway.UnhandledError[T](fallback, nil)
	}

	if !env.Success {
		return gateway.HandledError[T](messageOr(env.Message, fallback),
			gateway.WithStatusCode(env.StatusCode),
			gateway.WithErrors(env.Errors),
			gateway.WithMeta(env.Meta),
		)
	}

	if env.Data == nil {
		env.Data = new(T)
	}

	return env
}

func fromError[T any](err error, fallback string) *gateway.Envelope[T] {
	transportErr := &gateway.TransportError{}
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		if env, ok := transportErr.Envelope(); ok && env.Message != "" {
			return gateway.HandledError[T](env.Message,
				gateway.WithStatusCode(transportErr.StatusCode),
				gateway.WithErrors(env.Errors),
				gateway.WithMeta(env.Meta),
			)
		}
	}

	return gateway.UnhandledError[T](messageOr(err.Error(), fallback), gateway.ErrorDetails(err))
}

// relabel replaces the message of a successful envelope.
func relabel[T any](env *gateway.Envelope[T], message string) *gateway.Envelope[T] {
	if env.Success {
		env.Message = message
	}

	return env
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}

	return message
}

func statusOf(resp *gateway.Response) int {
	if resp == nil || resp.StatusCode == 0 {
		return gateway.DefaultSuccessStatus
	}

	return resp.StatusCode
}
