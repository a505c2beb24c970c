package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/tasklist"
)

var errFetchFailed = errors.New("failed to fetch tasks")

// findTask refreshes the task list and resolves ref against it, so positions
// match what `todoctl list` prints right now.
func findTask(ctx context.Context, tasks *tasklist.State, ref TaskRef) (service.Task, error) {
	if !tasks.FetchAll(ctx) {
		return service.Task{}, errFetchFailed
	}
	if ref.ByID {
		task, ok := tasks.Find(ref.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("task not found: %s", ref)
		}
		return task, nil
	}
	task, ok := tasks.At(ref.Num)
	if !ok {
		return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
	}
	return task, nil
}

// resolveTaskArg parses the task reference in args and looks it up.
// On failure it prints the error and returns the exit code to use.
func resolveTaskArg(ctx context.Context, tasks *tasklist.State, args []string, errOut io.Writer) (service.Task, int, bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError, false
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return service.Task{}, exitcode.UserError, false
	}

	task, err := findTask(ctx, tasks, ref)
	if errors.Is(err, errFetchFailed) {
		return service.Task{}, backendFailed(errOut, "fetch tasks"), false
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError, false
	}
	return task, exitcode.Success, true
}
