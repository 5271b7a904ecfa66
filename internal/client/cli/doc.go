// Package cli provides the interactive users command-line client.
//
// It wires configuration and the AccountService client into a REPL:
//   - signup: register an account (email, password, optional profile, role and claims)
//   - signin / signout: obtain or drop an access token
//   - me: show the signed-in identity
//   - user <id>: show an identity by id
//
// Passwords are read from the terminal without echo. The REPL is started via
// App.Run(ctx), which blocks until the user exits.
package cli
