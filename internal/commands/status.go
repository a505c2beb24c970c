package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"todoctl/internal/app"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/session"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd prints what the stored credential says without contacting the
// server.
type StatusCmd struct {
	now func() time.Time
}

// SetClock sets the time used to report expiry (for testing).
func (c *StatusCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show the stored credential" }
func (c *StatusCmd) Usage() string     { return "todoctl status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "server:  %s\n", cfg.Server)
	if !a.Session.Authenticated() {
		fmt.Fprintln(out, "session: not logged in")
		return exitcode.Success
	}

	claims, err := a.Session.Claims()
	if errors.Is(err, session.ErrOpaqueToken) {
		fmt.Fprintln(out, "session: logged in")
		return exitcode.Success
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	fmt.Fprintf(out, "session: logged in as %s (id %d)\n", claims.Username, claims.UserID)
	if claims.ExpiresAt != nil {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		exp := claims.ExpiresAt.Time.UTC()
		state := "valid"
		if !exp.After(now()) {
			state = "expired"
		}
		fmt.Fprintf(out, "expires: %s (%s)\n", exp.Format(time.DateTime), state)
	}
	return exitcode.Success
}
