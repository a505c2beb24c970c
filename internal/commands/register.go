package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoctl/internal/app"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
// It creates the account only; run login afterwards.
type RegisterCmd struct {
	password string
	in       io.Reader
}

// SetInput sets where the password is read from (for testing).
func (c *RegisterCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string     { return "todoctl register [--password <password>] <username>" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	username, password, ok := readCredentials(args, c.password, c.in, errOut)
	if !ok {
		return exitcode.UserError
	}
	if err := checkInput(registerInput{Username: username, Password: password}); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !a.Session.Register(ctx, username, password) {
		return backendFailed(errOut, "register")
	}

	printOK(cfg, out)
	return exitcode.Success
}
