// Package gwclient provides the primary entry point for constructing a Quill
// API gateway client that implements the gateway.Client interface.
//
// It normalizes the base address, creates the cookie jar that carries the
// session tokens, and wires the prefixed clients, the refresh coordinator
// and the logout signal according to gateway.Config.
//
// Quick start
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
//
//	  cli, err := gwclient.New(ctx, &gateway.Config{BaseAddress: "localhost:5000/api/v1"})
//	  if err != nil { log.Fatal(err) }
//
//	  login := cli.Auth().Login(ctx, &gateway.LoginCredentials{Email: "ada@quill.dev", Password: "..."})
//	  if !login.Success { log.Fatal(login.Message) }
//
//	  // Expired access tokens are refreshed and the call replayed transparently.
//	  me := cli.Users().GetCurrentUserProfile(ctx)
//	  log.Println(me.Value().Name)
//	}
//
// Topologies
//
// By default every prefixed client shares one refresh coordinator, so a
// burst of expirations across /users and /blogs issues a single refresh
// call. Set Config.RefreshTopology to gateway.TopologyPerClient for private
// coordinators or gateway.TopologyNone to let ACCESS_TOKEN_EXPIRED surface.
//
// Forced logout
//
// Config.OnForceLogout is invoked when a response or the refresh call carries
// REFRESH_TOKEN_MISSING, REFRESH_TOKEN_MISMATCH or TOKEN_INVALID. The host
// application resets its session state there.
package gwclient
