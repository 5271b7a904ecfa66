package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	Me(ctx context.Context) error
	User(ctx context.Context, id string) error
}

// runREPL reads commands line by line and dispatches them to a. Command
// handlers prompt on the same reader. The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not signed in:
//	  - help           show available commands
//	  - signup         create an account
//	  - signin         authenticate
//	  - user <id>      show an identity (needs a token)
//	  - exit | quit    leave the program
//
//	Signed in:
//	  - me             show the signed-in identity
//	  - user <id>      show an identity by id
//	  - signout        drop the access token
//	  - exit | quit    leave the program
//
// Errors returned by command handlers are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("users> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: me, user <id>, signout, exit")
			} else {
				printlnFn("Available commands: signup, signin, user <id>, exit")
			}

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "me":
			_ = a.Me(ctx)

		case "user":
			if len(args) == 0 {
				printlnFn("Usage: user <id>")
				continue
			}
			_ = a.User(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
