// Package gateway provides types, interfaces, and helpers for talking to the
// Quill API gateway.
//
// # Overview
//
// The gateway package defines the response envelope every call normalizes
// into, the request/response types seen by interceptors, the service client
// interfaces (UsersClient, AuthClient) and the Config used to build a client.
// A concrete implementation is provided by the gwclient package, which wires
// the cookie jar, transport, interceptors and token refresh. Most consumers
// should import gwclient to construct a client.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/quillpost/gateway-client/pkg/gateway"
//	  "github.com/quillpost/gateway-client/pkg/gwclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := gwclient.New(ctx, &gateway.Config{BaseAddress: "http://localhost:5000/api/v1"})
//	  if err != nil { log.Fatal(err) }
//
//	  me := cli.Users().GetCurrentUserProfile(ctx)
//	  if me.Success { log.Println(me.Data.Name) }
//	}
//
// # Envelopes
//
// Envelope has three variants: Success, HandledError (the backend reported a
// business failure) and UnhandledError (no backend envelope was obtained,
// status 500). Kind reports which one a value is.
//
// # Token refresh
//
// When a request fails with ACCESS_TOKEN_EXPIRED, the client refreshes the
// session once and replays the request. Concurrent expirations share a single
// refresh call; REFRESH_TOKEN_MISSING, REFRESH_TOKEN_MISMATCH and
// TOKEN_INVALID notify Config.OnForceLogout instead.
//
// # Interceptors
//
// InterceptorChain runs request interceptors before dispatch, response
// interceptors after a successful exchange and error interceptors after a
// failed one. Tracing, logging, headers and metrics are provided here.
package gateway
