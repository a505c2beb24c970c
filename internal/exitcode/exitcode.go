// Package exitcode defines the process exit codes of todoctl.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments, invalid input or an unknown task
	// reference. Nothing was sent to the server.
	UserError = 1

	// AuthError indicates a missing credential or a rejected login.
	AuthError = 2

	// BackendError indicates the server or the network did not complete
	// the action.
	BackendError = 3
)
