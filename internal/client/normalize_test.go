package client

import (
	"errors"
	"testing"

	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/stretchr/testify/assert"
)

type post struct {
	Title string `json:"title"`
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		resp        *gateway.Response
		err         error
		wantKind    gateway.Kind
		wantStatus  int
		wantMessage string
		wantTitle   string
	}{
		{
			name:        "success envelope",
			resp:        &gateway.Response{StatusCode: 200, Body: []byte(`{"success":true,"message":"ok","data":{"title":"Go"}}`)},
			wantKind:    gateway.KindSuccess,
			wantStatus:  200,
			wantMessage: "ok",
			wantTitle:   "Go",
		},
		{
			name:        "success without data",
			resp:        &gateway.Response{StatusCode: 201, Body: []byte(`{"success":true,"message":"created","statusCode":201}`)},
			wantKind:    gateway.KindSuccess,
			wantStatus:  201,
			wantMessage: "created",
		},
		{
			name:        "empty body",
			resp:        &gateway.Response{StatusCode: 204},
			wantKind:    gateway.KindSuccess,
			wantStatus:  204,
			wantMessage: "Success",
		},
		{
			name:        "failed envelope on 2xx",
			resp:        &gateway.Response{StatusCode: 200, Body: []byte(`{"success":false,"statusCode":409,"data":{"title":"x"}}`)},
			wantKind:    gateway.KindHandledError,
			wantStatus:  409,
			wantMessage: "fallback",
		},
		{
			name:        "malformed body",
			resp:        &gateway.Response{StatusCode: 200, Body: []byte(`<html>`)},
			wantKind:    gateway.KindUnhandledError,
			wantStatus:  500,
			wantMessage: "fallback",
		},
		{
			name: "error status with envelope",
			err: &gateway.TransportError{
				StatusCode: 422,
				Body:       []byte(`{"success":false,"message":"Title too short","errors":[{"field":"title"}]}`),
				Message:    "Title too short",
			},
			wantKind:    gateway.KindHandledError,
			wantStatus:  422,
			wantMessage: "Title too short",
		},
		{
			name:        "error status without envelope",
			err:         &gateway.TransportError{StatusCode: 502, Body: []byte("bad gateway"), Message: "Bad Gateway"},
			wantKind:    gateway.KindUnhandledError,
			wantStatus:  500,
			wantMessage: "Bad Gateway (status: 502)",
		},
		{
			name:        "network failure",
			err:         &gateway.TransportError{Message: "request failed", Err: errors.New("connection refused")},
			wantKind:    gateway.KindUnhandledError,
			wantStatus:  500,
			wantMessage: "request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := normalize[post](tt.resp, tt.err, "fallback")

			assert.Equal(t, tt.wantKind, env.Kind())
			assert.Equal(t, tt.wantStatus, env.StatusCode)
			assert.Equal(t, tt.wantMessage, env.Message)

			if tt.wantKind == gateway.KindSuccess {
				assert.NotNil(t, env.Data)
				assert.Equal(t, tt.wantTitle, env.Value().Title)
			} else {
				assert.Nil(t, env.Data)
			}
		})
	}
}

func TestNormalize_PassesErrorDetails(t *testing.T) {
	t.Parallel()

	err := &gateway.TransportError{
		StatusCode: 400,
		Body:       []byte(`{"success":false,"message":"Validation failed","errors":{"email":"taken"},"meta":{"requestId":"r1"}}`),
	}

	env := normalize[post](nil, err, "fallback")

	assert.Equal(t, map[string]any{"email": "taken"}, env.Errors)
	assert.Equal(t, map[string]any{"requestId": "r1"}, env.Meta)
}

func TestRelabel(t *testing.T) {
	t.Parallel()

	ok := relabel(gateway.Success(post{}), "Fetched")
	assert.Equal(t, "Fetched", ok.Message)

	failed := relabel(gateway.HandledError[post]("Nope"), "Fetched")
	assert.Equal(t, "Nope", failed.Message)
}
