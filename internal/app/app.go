// Package app wires the session and task list together for one process.
package app

import (
	"go.uber.org/zap"

	"todoctl/internal/credstore"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tasklist"
)

// App holds the state objects shared by every command.
type App struct {
	Session *session.State
	Tasks   *tasklist.State
	Log     *zap.Logger
}

// New restores the session from store and builds a task list that reads
// the session's credential on every call.
func New(svc service.Service, store credstore.Store, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	sess := session.New(store, svc, log)
	return &App{
		Session: sess,
		Tasks:   tasklist.New(sess, svc, log),
		Log:     log,
	}
}
