package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/client/client"
	"github.com/dmitrijs2005/usersvc/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewAccountClientService(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

// Run starts the REPL on the app's input and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Users CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isSignedIn() bool {
	return a.client.SignedIn()
}

func (a *App) status() string {
	if a.isSignedIn() {
		return a.email
	}
	return "anonymous"
}

func (a *App) SignUp(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return a.fail(err)
	}
	firstName, err := GetSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return a.fail(err)
	}
	lastName, err := GetSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return a.fail(err)
	}
	role, err := GetSimpleText(a.reader, "Role (optional)", a.out)
	if err != nil {
		return a.fail(err)
	}
	claims, err := GetClaims(a.reader, a.out)
	if err != nil {
		return a.fail(err)
	}

	err = a.client.SignUp(ctx, &api.SignUpRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		Claims:    claims,
	})
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) SignIn(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return a.fail(err)
	}

	tok, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}

	a.email = tok.Email
	fmt.Fprintf(a.out, "Signed in as %s (role: %s)\n", tok.Email, valueOr(tok.Role, "none"))
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	a.client.SignOut()
	a.email = ""
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Me(ctx context.Context) error {

	u, err := a.client.Me(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.printUser(u)
	return nil
}

func (a *App) User(ctx context.Context, id string) error {

	u, err := a.client.GetUser(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.printUser(u)
	return nil
}

func (a *App) printUser(u *api.UserResponse) {
	fmt.Fprintf(a.out, "ID:      %s\n", u.ID)
	fmt.Fprintf(a.out, "Email:   %s\n", u.Email)
	fmt.Fprintf(a.out, "Name:    %s\n", valueOr(strings.TrimSpace(u.FirstName+" "+u.LastName), "-"))
	fmt.Fprintf(a.out, "Role:    %s\n", valueOr(u.Role, "-"))
	fmt.Fprintf(a.out, "Active:  %t\n", u.IsActive)
	fmt.Fprintf(a.out, "Created: %s\n", u.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
	for _, e := range u.Claims.Entries() {
		fmt.Fprintf(a.out, "Claim:   %s = %s\n", e.Type, strings.Join(e.Values, ", "))
	}
}

// fail prints err for the user and returns it.
func (a *App) fail(err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, "Not found")
	default:
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	}
	return err
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
