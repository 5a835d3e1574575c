package gateway_test

import (
	"encoding/json"
	"testing"

	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID string `json:"id"`
}

func TestSuccess_Defaults(t *testing.T) {
	t.Parallel()

	env := gateway.Success(profile{ID: "u1"})

	assert.True(t, env.Success)
	assert.Equal(t, "Success", env.Message)
	assert.Equal(t, 200, env.StatusCode)
	require.NotNil(t, env.Data)
	assert.Equal(t, "u1", env.Data.ID)
	assert.Nil(t, env.Meta)
	assert.Equal(t, gateway.KindSuccess, env.Kind())
}

func TestSuccess_Overrides(t *testing.T) {
	t.Parallel()

	meta := map[string]int{"page": 2}
	env := gateway.Success("created", gateway.WithMessage("Created"), gateway.WithStatusCode(201), gateway.WithMeta(meta))

	assert.Equal(t, "Created", env.Message)
	assert.Equal(t, 201, env.StatusCode)
	assert.Equal(t, meta, env.Meta)
	assert.Equal(t, "created", env.Value())
}

func TestHandledError(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		env := gateway.HandledError[profile]("Failed to fetch user profile")

		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
		assert.Equal(t, 400, env.StatusCode)
		assert.Equal(t, "Failed to fetch user profile", env.Message)
		assert.Equal(t, gateway.KindHandledError, env.Kind())
		assert.True(t, env.IsError())
	})

	t.Run("with status, errors and meta", func(t *testing.T) {
		t.Parallel()

		errs := []map[string]string{{"field": "email"}}
		env := gateway.HandledError[profile]("Validation failed",
			gateway.WithStatusCode(422),
			gateway.WithErrors(errs),
			gateway.WithMeta("m"),
		)

		assert.Equal(t, 422, env.StatusCode)
		assert.Equal(t, errs, env.Errors)
		assert.Equal(t, "m", env.Meta)
		assert.Nil(t, env.Data)
	})
}

func TestUnhandledError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		message     string
		errs        any
		wantMessage string
	}{
		{name: "default message", message: "", wantMessage: "Something went wrong"},
		{name: "custom message", message: "connection refused", errs: "boom", wantMessage: "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := gateway.UnhandledError[profile](tt.message, tt.errs)

			assert.False(t, env.Success)
			assert.Nil(t, env.Data)
			assert.Equal(t, 500, env.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Equal(t, tt.errs, env.Errors)
			assert.Equal(t, gateway.KindUnhandledError, env.Kind())
		})
	}
}

func TestEnvelope_ErrorVariantsNeverCarryData(t *testing.T) {
	t.Parallel()

	handled := gateway.HandledError[profile]("x", gateway.WithStatusCode(200))
	unhandled := gateway.UnhandledError[profile]("x", nil)

	for _, env := range []*gateway.Envelope[profile]{handled, unhandled} {
		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
		assert.Equal(t, profile{}, env.Value())
	}

	success := gateway.Success(profile{ID: "u1"})
	assert.False(t, gateway.IsErrorStatus(success.StatusCode))
	assert.True(t, gateway.IsErrorStatus(unhandled.StatusCode))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("success envelope", func(t *testing.T) {
		t.Parallel()

		env, err := gateway.Decode[profile]([]byte(`{"success":true,"message":"ok","data":{"id":"u1"},"statusCode":200}`))
		require.NoError(t, err)

		assert.True(t, env.Success)
		assert.Equal(t, "u1", env.Data.ID)
		assert.Equal(t, gateway.KindSuccess, env.Kind())
	})

	t.Run("failed envelope drops data", func(t *testing.T) {
		t.Parallel()

		env, err := gateway.Decode[profile]([]byte(`{"success":false,"message":"nope","data":{"id":"u1"},"statusCode":404}`))
		require.NoError(t, err)

		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
		assert.Equal(t, 404, env.StatusCode)
		assert.Equal(t, gateway.KindHandledError, env.Kind())
	})

	t.Run("missing status code defaults by outcome", func(t *testing.T) {
		t.Parallel()

		env, err := gateway.Decode[json.RawMessage]([]byte(`{"success":false,"message":"nope"}`))
		require.NoError(t, err)
		assert.Equal(t, 400, env.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		_, err := gateway.Decode[profile]([]byte(`<html>`))
		require.ErrorIs(t, err, gateway.ErrMalformedEnvelope)
	})
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", gateway.KindSuccess.String())
	assert.Equal(t, "handled_error", gateway.KindHandledError.String())
	assert.Equal(t, "unhandled_error", gateway.KindUnhandledError.String())
	assert.Equal(t, "unknown", gateway.Kind(0).String())
}

func TestFailure_KeepsVariant(t *testing.T) {
	t.Parallel()

	unhandled := gateway.Failure[profile](gateway.UnhandledError[gateway.Empty]("dial failed", "details"))
	assert.Equal(t, gateway.KindUnhandledError, unhandled.Kind())
	assert.Equal(t, 500, unhandled.StatusCode)
	assert.Equal(t, "details", unhandled.Errors)

	handled := gateway.Failure[profile](gateway.HandledError[gateway.Empty]("nope", gateway.WithStatusCode(404), gateway.WithMeta("m")))
	assert.Equal(t, gateway.KindHandledError, handled.Kind())
	assert.Equal(t, 404, handled.StatusCode)
	assert.Equal(t, "m", handled.Meta)
	assert.Nil(t, handled.Data)

	fromSuccess := gateway.Failure[profile](gateway.Success(1))
	assert.False(t, fromSuccess.Success)
	assert.Equal(t, gateway.KindHandledError, fromSuccess.Kind())
}
