// Package server provides HTTP routing, middleware and the local redirect target for the login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// [RequestLogger] tags each request with an id and logs its outcome.
//
// # Callback Handler
//
// [CallbackHandler] is the redirect target registered at /callback. It hands the request URL to the auth flow,
// which validates the state parameter, loads the pending verifier and exchanges the code for a token.
// The result is sent once through a channel and the browser is redirected to the clean URL.
//
// It only processes one code-bearing callback to prevent replay.
//
// # Usage
//
// When a command needs a token, [Listen] binds the redirect address (127.0.0.1:3000 by default), the browser
// is sent to the provider and [CallbackServer.Wait] returns the result or times out, then shuts the server down.
package server
