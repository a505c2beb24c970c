// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"todoctl/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned when the token is missing or unknown.
var ErrUnauthorized = errors.New("unauthorized")

// ErrBadCredentials is returned by Login for a wrong username or password.
var ErrBadCredentials = errors.New("invalid username or password")

// FakeService is an in-memory implementation of service.Service for testing.
// Tasks are kept newest first, the order the server lists them in.
type FakeService struct {
	mu     sync.RWMutex
	users  map[string]int64  // username -> user ID
	pass   map[string]string // username -> password
	tokens map[string]string // token -> username
	tasks  []service.Task
	nextID int64

	// Error injection for testing
	LoginErr      error
	RegisterErr   error
	ProfileErr    error
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// CreateCode and UpdateCode replace the envelope code when non-zero.
	// A non-200 code leaves the stored tasks unchanged, like a failed insert.
	CreateCode int
	UpdateCode int

	// PartialUpdates makes UpdateTask reply with only the ID and the
	// patched fields instead of the whole record.
	PartialUpdates bool

	// OmitItems makes ListTasks behave as if the reply had no items field.
	OmitItems bool

	// Recorded calls
	Calls     []string
	LastToken string
	LastPatch service.TaskPatch
	LastNew   service.NewTask
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]int64),
		pass:   make(map[string]string),
		tokens: make(map[string]string),
	}
}

// AddUser registers a user directly.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addUser(username, password)
}

func (f *FakeService) addUser(username, password string) {
	f.users[username] = int64(len(f.users) + 1)
	f.pass[username] = password
}

// IssueToken returns a valid token for username, creating the user if needed.
func (f *FakeService) IssueToken(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; !ok {
		f.addUser(username, "")
	}
	token := "token-" + username
	f.tokens[token] = username
	return token
}

// AddTask stores a task with the given title and status as the newest task.
// Extra fields are stored alongside the known ones.
func (f *FakeService) AddTask(title, status string, extra map[string]any) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec := map[string]any{
		"id":          f.nextID,
		"title":       title,
		"description": "",
		"due_date":    "",
		"status":      status,
	}
	for k, v := range extra {
		rec[k] = v
	}
	task := Decode[service.Task](rec)
	f.tasks = append([]service.Task{task}, f.tasks...)
	return task
}

// Tasks returns a copy of the stored tasks, newest first.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeService) record(call, token string) {
	f.Calls = append(f.Calls, call)
	f.LastToken = token
}

func (f *FakeService) authorize(token string) (string, error) {
	username, ok := f.tokens[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return username, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login", "")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	if pw, ok := f.pass[username]; !ok || pw != password {
		return "", ErrBadCredentials
	}
	token := "token-" + username
	f.tokens[token] = username
	return token, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("register", "")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if _, ok := f.users[username]; ok {
		return fmt.Errorf("username already exists: %s", username)
	}
	f.addUser(username, password)
	return nil
}

// Profile implements service.Service.
func (f *FakeService) Profile(ctx context.Context, token string) (service.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("profile", token)
	if f.ProfileErr != nil {
		return service.Profile{}, f.ProfileErr
	}
	username, err := f.authorize(token)
	if err != nil {
		return service.Profile{}, err
	}
	return Decode[service.Profile](map[string]any{
		"id":       f.users[username],
		"username": username,
	}), nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, token string) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list", token)
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	if _, err := f.authorize(token); err != nil {
		return nil, err
	}
	out := make([]service.Task, 0, len(f.tasks))
	if f.OmitItems {
		return out, nil
	}
	return append(out, f.tasks...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, token string, in service.NewTask) (service.Envelope[service.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create", token)
	f.LastNew = in
	if f.CreateTaskErr != nil {
		return service.Envelope[service.Task]{}, f.CreateTaskErr
	}
	if _, err := f.authorize(token); err != nil {
		return service.Envelope[service.Task]{}, err
	}
	if f.CreateCode != 0 && f.CreateCode != service.SuccessCode {
		return envelope[service.Task](f.CreateCode, "create task failed", service.Task{}), nil
	}

	f.nextID++
	task := Decode[service.Task](map[string]any{
		"id":          f.nextID,
		"title":       in.Title,
		"description": in.Description,
		"due_date":    in.DueDate,
		"status":      service.StatusTodo,
	})
	f.tasks = append([]service.Task{task}, f.tasks...)
	return envelope(service.SuccessCode, "task created", task), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, token string, id int64, patch service.TaskPatch) (service.Envelope[service.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update", token)
	f.LastPatch = patch
	if f.UpdateTaskErr != nil {
		return service.Envelope[service.Task]{}, f.UpdateTaskErr
	}
	if _, err := f.authorize(token); err != nil {
		return service.Envelope[service.Task]{}, err
	}
	if f.UpdateCode != 0 && f.UpdateCode != service.SuccessCode {
		return envelope[service.Task](f.UpdateCode, "update task failed", service.Task{}), nil
	}

	i := f.index(id)
	if i < 0 {
		return service.Envelope[service.Task]{}, ErrNotFound
	}
	reply := Decode[service.Task](patchFields(id, patch))
	updated, err := f.tasks[i].Merge(reply)
	if err != nil {
		return service.Envelope[service.Task]{}, err
	}
	f.tasks[i] = updated
	if f.PartialUpdates {
		return envelope(service.SuccessCode, "task updated", reply), nil
	}
	return envelope(service.SuccessCode, "task updated", updated), nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete", token)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	if _, err := f.authorize(token); err != nil {
		return err
	}
	if i := f.index(id); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	}
	return nil
}

func (f *FakeService) index(id int64) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func patchFields(id int64, p service.TaskPatch) map[string]any {
	rec := map[string]any{"id": id}
	if p.Title != nil {
		rec["title"] = *p.Title
	}
	if p.Description != nil {
		rec["description"] = *p.Description
	}
	if p.DueDate != nil {
		rec["due_date"] = *p.DueDate
	}
	if p.Status != nil {
		rec["status"] = *p.Status
	}
	return rec
}

func envelope[T any](code int, msg string, data T) service.Envelope[T] {
	return service.Envelope[T]{Code: &code, Message: msg, Data: data}
}

// Decode builds a T the way a JSON reply would, so raw fields are populated.
// It panics on values that do not round-trip; it is meant for test fixtures.
func Decode[T any](v any) T {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

var _ service.Service = (*FakeService)(nil)
