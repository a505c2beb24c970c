// Package tasklist keeps a local copy of the user's tasks in sync with the
// server. The server is the source of truth; the local collection is a cache
// reconciled after every successful call.
package tasklist

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todoctl/internal/service"
)

// State owns the ordered task collection.
// Order is display order: server order after a fetch, newest first on create.
// It is not safe for concurrent use; if calls overlap, the last reply wins.
type State struct {
	tasks []service.Task

	creds oauth2.TokenSource
	svc   service.Tasks
	log   *zap.Logger
}

// New returns an empty State. creds is consulted on every call, so a login
// or logout on the session is seen by the next action.
func New(creds oauth2.TokenSource, svc service.Tasks, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		tasks: []service.Task{},
		creds: creds,
		svc:   svc,
		log:   log.Named("tasks"),
	}
}

// Tasks returns a copy of the collection. Each task's raw field set is
// copied too, so callers cannot change the cache.
func (s *State) Tasks() []service.Task {
	out := slices.Clone(s.tasks)
	for i := range out {
		out[i].Raw = maps.Clone(out[i].Raw)
	}
	return out
}

// Len returns the number of cached tasks.
func (s *State) Len() int {
	return len(s.tasks)
}

// At returns the task at 1-based display position n.
func (s *State) At(n int) (service.Task, bool) {
	if n < 1 || n > len(s.tasks) {
		return service.Task{}, false
	}
	return s.tasks[n-1], true
}

// Find returns the task with the given ID.
func (s *State) Find(id int64) (service.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return service.Task{}, false
	}
	return s.tasks[i], true
}

func (s *State) index(id int64) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}

func (s *State) token() (string, bool) {
	tok, err := s.creds.Token()
	if err != nil {
		s.log.Warn("failed to read credential", zap.Error(err))
		return "", false
	}
	return tok.AccessToken, true
}

// FetchAll replaces the whole collection with the server's list.
// On failure the collection is left as it was.
func (s *State) FetchAll(ctx context.Context) bool {
	token, ok := s.token()
	if !ok {
		return false
	}
	tasks, err := s.svc.ListTasks(ctx, token)
	if err != nil {
		s.log.Warn("failed to fetch tasks", zap.Error(err))
		return false
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	s.tasks = tasks
	return true
}

// Create adds a task. The server's record goes to the front of the
// collection only if the reply carries the success code.
func (s *State) Create(ctx context.Context, title, description, dueDate string) bool {
	token, ok := s.token()
	if !ok {
		return false
	}
	in := service.NewTask{Title: title, Description: description, DueDate: dueDate}
	s.log.Debug("creating task", zap.String("title", title), zap.String("due_date", dueDate))

	env, err := s.svc.CreateTask(ctx, token, in)
	if err != nil {
		s.log.Warn("failed to create task", zap.Error(err))
		return false
	}
	if err := service.Rejection(env); err != nil {
		s.log.Warn("failed to create task", zap.Error(err))
		return false
	}
	s.tasks = slices.Insert(s.tasks, 0, env.Data)
	return true
}

// Update sends a partial update. On success the fields the server returned
// are merged over the local record; fields it did not return are kept.
// If no local record has that ID nothing changes locally and the call still
// succeeds.
func (s *State) Update(ctx context.Context, id int64, patch service.TaskPatch) bool {
	env, ok := s.put(ctx, id, patch, "failed to update task")
	if !ok {
		return false
	}
	i := s.index(id)
	if i < 0 {
		return true
	}
	merged, err := s.tasks[i].Merge(env.Data)
	if err != nil {
		// The call succeeded; the local copy is stale until the next fetch.
		s.log.Warn("failed to merge updated task", zap.Int64("id", id), zap.Error(err))
		return true
	}
	s.tasks[i] = merged
	return true
}

// Delete removes a task. A task that is not cached locally is not an error.
func (s *State) Delete(ctx context.Context, id int64) bool {
	token, ok := s.token()
	if !ok {
		return false
	}
	if err := s.svc.DeleteTask(ctx, token, id); err != nil {
		s.log.Warn("failed to delete task", zap.Int64("id", id), zap.Error(err))
		return false
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
	return true
}

// Toggle flips a task between done and todo. Any status other than done is
// treated as todo. On success the local record is replaced by the server's
// record as a whole, unlike Update which merges.
func (s *State) Toggle(ctx context.Context, task service.Task) bool {
	status := task.ToggledStatus()
	env, ok := s.put(ctx, task.ID, service.TaskPatch{Status: &status}, "failed to update task status")
	if !ok {
		return false
	}
	if i := s.index(task.ID); i >= 0 {
		s.tasks[i] = env.Data
	}
	return true
}

func (s *State) put(ctx context.Context, id int64, patch service.TaskPatch, msg string) (service.Envelope[service.Task], bool) {
	token, ok := s.token()
	if !ok {
		return service.Envelope[service.Task]{}, false
	}
	env, err := s.svc.UpdateTask(ctx, token, id, patch)
	if err == nil {
		err = service.Rejection(env)
	}
	if err != nil {
		s.log.Warn(msg, zap.Int64("id", id), zap.Error(err))
		return service.Envelope[service.Task]{}, false
	}
	return env, true
}
