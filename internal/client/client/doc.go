// Package client talks to the AccountService from the CLI.
//
// GRPCClient manages the connection, remembers the access token returned by
// SignIn and attaches it to later calls through an interceptor. Server
// failures are returned as *ServerError carrying the (code, message) entries
// the service sent; transport conditions map to ErrUnavailable.
package client
