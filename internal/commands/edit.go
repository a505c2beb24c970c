package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/app"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the flags given are sent.
type EditCmd struct {
	preset service.TaskPatch
	patch  service.TaskPatch
}

// SetPatch sets the fields to change (for testing). Flags given on the
// command line are applied over it. It holds for the next run only.
func (c *EditCmd) SetPatch(p service.TaskPatch) {
	c.preset = p
	c.patch = p
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "todoctl edit [--title <t>] [--desc <text>] [--due <YYYY-MM-DD>] [--status <status>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.patch = c.preset
	fs.Var(optionalString{&c.patch.Title}, "title", "")
	fs.Var(optionalString{&c.patch.Description}, "desc", "")
	fs.Var(optionalString{&c.patch.DueDate}, "due", "")
	fs.Var(optionalString{&c.patch.Status}, "status", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	defer func() { c.preset = service.TaskPatch{} }()
	if c.patch.Empty() {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc, --due or --status)")
		return exitcode.UserError
	}
	if c.patch.Title != nil {
		title := strings.TrimSpace(*c.patch.Title)
		c.patch.Title = &title
	}
	in := editTaskInput{
		Title:       c.patch.Title,
		Description: c.patch.Description,
		DueDate:     c.patch.DueDate,
		Status:      c.patch.Status,
	}
	if err := checkInput(in); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, code, ok := resolveTaskArg(ctx, a.Tasks, args, errOut)
	if !ok {
		return code
	}

	if !a.Tasks.Update(ctx, task.ID, c.patch) {
		return backendFailed(errOut, "update task")
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	if updated, ok := a.Tasks.Find(task.ID); ok {
		output.FormatTaskDetail(out, updated)
		return exitcode.Success
	}
	printOK(cfg, out)
	return exitcode.Success
}

// optionalString is a flag value that is nil until the flag is given, so an
// explicit empty value can be told apart from an absent flag.
type optionalString struct {
	dst **string
}

func (o optionalString) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return **o.dst
}

func (o optionalString) Set(v string) error {
	*o.dst = &v
	return nil
}
