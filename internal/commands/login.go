package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"todoctl/internal/app"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
	in       io.Reader
}

// SetInput sets where the password is read from when --password is not
// given (for testing). Defaults to stdin.
func (c *LoginCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the credential" }
func (c *LoginCmd) Usage() string     { return "todoctl login [--password <password>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	username, password, ok := readCredentials(args, c.password, c.in, errOut)
	if !ok {
		return exitcode.UserError
	}
	if err := checkInput(loginInput{Username: username, Password: password}); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !a.Session.Login(ctx, username, password) {
		fmt.Fprintln(errOut, "error: login failed (rerun with --debug for details)")
		return exitcode.AuthError
	}

	printOK(cfg, out)
	return exitcode.Success
}

// readCredentials takes the username from args and the password from the
// flag or, failing that, the first line of in.
func readCredentials(args []string, password string, in io.Reader, errOut io.Writer) (string, string, bool) {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: username required")
		return "", "", false
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", "", false
	}
	username := strings.TrimSpace(args[0])

	if password == "" {
		if in == nil {
			in = os.Stdin
		}
		line, err := readLine(in)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
			return "", "", false
		}
		password = line
	}
	return username, password, true
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if sc.Scan() {
		return strings.TrimRight(sc.Text(), "\r"), nil
	}
	return "", sc.Err()
}
