package commands

import (
	"context"
	"flag"
	"io"

	"todoctl/internal/app"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd fetches and prints the signed-in user's profile.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "todoctl whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if !a.Session.FetchProfile(ctx) {
		return backendFailed(errOut, "get user info")
	}
	profile, _ := a.Session.Profile()
	output.FormatProfile(out, profile)
	return exitcode.Success
}
