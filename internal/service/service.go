// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Users covers the account endpoints.
// Implementations return an error for transport failures and non-2xx replies.
type Users interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// Register creates an account. The reply body is not consumed.
	Register(ctx context.Context, username, password string) error

	// Profile returns the record of the user the token belongs to.
	Profile(ctx context.Context, token string) (Profile, error)
}

// Tasks covers the task endpoints. Every call is authorized by token,
// which may be empty.
type Tasks interface {
	// ListTasks returns the full task list in server order.
	// A reply without items yields an empty, non-nil slice.
	ListTasks(ctx context.Context, token string) ([]Task, error)

	// CreateTask creates a task. The envelope is returned as received so
	// callers can check its code.
	CreateTask(ctx context.Context, token string, task NewTask) (Envelope[Task], error)

	// UpdateTask applies a partial update to the task with the given ID.
	UpdateTask(ctx context.Context, token string, id int64, patch TaskPatch) (Envelope[Task], error)

	// DeleteTask deletes the task with the given ID.
	DeleteTask(ctx context.Context, token string, id int64) error
}

// Service defines the interface for backend operations.
// All REST calls go through this interface; commands never build requests.
type Service interface {
	Users
	Tasks
}
