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
	Register(&ToggleCmd{})
}

// ToggleCmd flips a task between done and todo.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task done, or a done task todo" }
func (c *ToggleCmd) Usage() string     { return "todoctl toggle <ref>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	task, code, ok := resolveTaskArg(ctx, a.Tasks, args, errOut)
	if !ok {
		return code
	}

	if !a.Tasks.Toggle(ctx, task) {
		return backendFailed(errOut, "update task status")
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok: %s\n", task.ToggledStatus())
	}
	return exitcode.Success
}
