package cli_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"todoctl/internal/cli"
	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/credstore"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error) {
		return svc, nil
	}
}

// run dispatches args with --config pointing at dir.
func run(t *testing.T, factory cli.ServiceFactory, dir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	if len(args) > 0 {
		args = append(args[:1:1], append([]string{"--config", dir}, args[1:]...)...)
	}
	var outBuf, errBuf bytes.Buffer
	code = cli.NewDispatcher(commands.DefaultRegistry, factory).Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// loggedIn writes a stored credential for alice into a new config dir.
func loggedIn(t *testing.T, svc *testutil.FakeService) string {
	t.Helper()
	dir := t.TempDir()
	if err := credstore.NewFile(filepath.Join(dir, config.TokenFile)).Set(svc.IssueToken("alice")); err != nil {
		t.Fatalf("failed to store token: %v", err)
	}
	return dir
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), t.TempDir(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), t.TempDir(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService()), t.TempDir(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService()), t.TempDir(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "todoctl 0.1.0") {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), t.TempDir(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), t.TempDir(), "add", "--desc")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -desc\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()

	for _, name := range []string{"list", "add", "edit", "toggle", "done", "rm", "whoami"} {
		t.Run(name, func(t *testing.T) {
			_, stderr, code := run(t, testFactory(svc), t.TempDir(), name, "1")

			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
			expected := "error: not logged in (run: todoctl login)\n"
			if stderr != expected {
				t.Errorf("expected %q, got %q", expected, stderr)
			}
		})
	}
	if len(svc.Calls) != 0 {
		t.Errorf("expected no backend calls, got %v", svc.Calls)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusTodo, nil)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	tokenPath := filepath.Join(xdg, config.AppName, config.TokenFile)
	if err := credstore.NewFile(tokenPath).Set(svc.IssueToken("alice")); err != nil {
		t.Fatalf("failed to store token: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc)).Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr.String())
	}
	if stdout.String() != "   1  [ ] Buy milk  #1\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestDispatcher_AddThenToggle(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := loggedIn(t, svc)
	factory := testFactory(svc)

	if _, stderr, code := run(t, factory, dir, "add", "--due", "2024-01-02", "Buy", "milk"); code != exitcode.Success {
		t.Fatalf("add failed: %d %s", code, stderr)
	}
	if _, stderr, code := run(t, factory, dir, "done", "1"); code != exitcode.Success {
		t.Fatalf("done failed: %d %s", code, stderr)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].Status != service.StatusDone {
		t.Errorf("expected one done task, got %+v", tasks)
	}
	if svc.LastNew.DueDate != "2024-01-02" {
		t.Errorf("expected due date sent, got %q", svc.LastNew.DueDate)
	}
}

func TestDispatcher_EditSendsOnlyGivenFlags(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := loggedIn(t, svc)
	svc.AddTask("Write report", service.StatusTodo, nil)

	_, stderr, code := run(t, testFactory(svc), dir, "edit", "--quiet", "--status", "in_progress", "--desc", "", "#1")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	p := svc.LastPatch
	if p.Title != nil || p.DueDate != nil {
		t.Errorf("expected title and due date unset, got %+v", p)
	}
	if p.Status == nil || *p.Status != service.StatusInProgress {
		t.Errorf("expected status in_progress, got %+v", p.Status)
	}
	if p.Description == nil || *p.Description != "" {
		t.Errorf("expected explicit empty description, got %+v", p.Description)
	}
}

func TestDispatcher_EditPresetPatchAppliesOnce(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := loggedIn(t, svc)
	svc.AddTask("Write report", service.StatusTodo, nil)

	edit := &commands.EditCmd{}
	reg := commands.NewRegistry()
	if err := reg.Register(edit); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	d := cli.NewDispatcher(reg, testFactory(svc))

	title := "Write Q3 report"
	edit.SetPatch(service.TaskPatch{Title: &title})
	var outBuf, errBuf bytes.Buffer
	code := d.Run(context.Background(), []string{"edit", "--config", dir, "--quiet", "--desc", "draft", "#1"}, &outBuf, &errBuf)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, errBuf.String())
	}
	p := svc.LastPatch
	if p.Title == nil || *p.Title != title {
		t.Errorf("expected preset title sent, got %+v", p.Title)
	}
	if p.Description == nil || *p.Description != "draft" {
		t.Errorf("expected flag description sent, got %+v", p.Description)
	}

	errBuf.Reset()
	code = d.Run(context.Background(), []string{"edit", "--config", dir, "#1"}, &outBuf, &errBuf)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d on second run, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(errBuf.String(), "error: nothing to change") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_LoginFlow(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret1")
	dir := t.TempDir()
	factory := testFactory(svc)

	if _, stderr, code := run(t, factory, dir, "login", "--password", "secret1", "alice"); code != exitcode.Success {
		t.Fatalf("login failed: %d %s", code, stderr)
	}
	stdout, _, code := run(t, factory, dir, "whoami")
	if code != exitcode.Success || stdout != "alice (id 1)\n" {
		t.Errorf("unexpected whoami result %d %q", code, stdout)
	}

	if _, _, code := run(t, factory, dir, "logout"); code != exitcode.Success {
		t.Errorf("logout failed: %d", code)
	}
	if _, _, code := run(t, factory, dir, "list"); code != exitcode.AuthError {
		t.Errorf("expected auth error after logout, got %d", code)
	}
}

func TestDispatcher_ServerFlag(t *testing.T) {
	var got string
	factory := func(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error) {
		got = cfg.Server
		return testutil.NewFakeService(), nil
	}

	_, _, code := run(t, factory, t.TempDir(), "version", "--server", "https://todo.example.com/app")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if got != "https://todo.example.com/app/" {
		t.Errorf("expected server from flag, got %q", got)
	}

	_, stderr, code := run(t, factory, t.TempDir(), "version", "--server", "todo.example.com")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid server URL") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error) {
		return nil, errors.New("boom")
	}

	_, stderr, code := run(t, factory, t.TempDir(), "list")
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: boom\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := loggedIn(t, svc)
	svc.ListTasksErr = errors.New("connection refused")

	_, stderr, code := run(t, testFactory(svc), dir, "list", "--debug")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	for _, want := range []string{"dispatch", "failed to fetch tasks", "connection refused"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected stderr to contain %q, got %q", want, stderr)
		}
	}
}
