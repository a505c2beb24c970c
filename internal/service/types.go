// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Task statuses understood by the server.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// SuccessCode is the only envelope code that means the server accepted a
// mutation.
const SuccessCode = 200

// Fields is a record exactly as the server sent it, keyed by JSON field name.
type Fields map[string]json.RawMessage

// Task represents a single task record.
// Known fields are decoded; Raw keeps every field the server returned so that
// fields this client does not model pass through untouched.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`

	Raw Fields `json:"-"`
}

type taskFields Task

// UnmarshalJSON decodes the known fields and keeps the raw field set.
func (t *Task) UnmarshalJSON(b []byte) error {
	var known taskFields
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var raw Fields
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = Task(known)
	t.Raw = raw
	return nil
}

// fields returns t.Raw filled in with the known fields it lacks.
func (t Task) fields() (Fields, error) {
	known, err := json.Marshal(taskFields(t))
	if err != nil {
		return nil, err
	}
	var out Fields
	if err := json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	maps.Copy(out, t.Raw)
	return out, nil
}

// MarshalJSON encodes the raw field set with the known fields laid over it.
func (t Task) MarshalJSON() ([]byte, error) {
	out := make(Fields, len(t.Raw)+5)
	maps.Copy(out, t.Raw)
	known, err := json.Marshal(taskFields(t))
	if err != nil {
		return nil, err
	}
	var overlay Fields
	if err := json.Unmarshal(known, &overlay); err != nil {
		return nil, err
	}
	maps.Copy(out, overlay)
	return json.Marshal(out)
}

// Merge returns t with every field present in patch written over it.
// Fields patch does not carry keep their values from t exactly as the server
// sent them, including nulls. Known fields missing from t.Raw are taken from
// the decoded struct.
func (t Task) Merge(patch Task) (Task, error) {
	if patch.Raw == nil {
		return t, nil
	}
	merged, err := t.fields()
	if err != nil {
		return t, err
	}
	maps.Copy(merged, patch.Raw)

	b, err := json.Marshal(merged)
	if err != nil {
		return t, err
	}
	var out Task
	if err := json.Unmarshal(b, &out); err != nil {
		return t, fmt.Errorf("merge task %d: %w", t.ID, err)
	}
	return out, nil
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusDone
}

// ToggledStatus returns the status a toggle moves the task to.
// Anything other than "done" counts as open.
func (t Task) ToggledStatus() string {
	if t.Done() {
		return StatusTodo
	}
	return StatusDone
}

// Profile is the authenticated user's record. The server owns its shape.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`

	Raw Fields `json:"-"`
}

type profileFields Profile

// UnmarshalJSON decodes the known fields and keeps the raw field set.
func (p *Profile) UnmarshalJSON(b []byte) error {
	var known profileFields
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var raw Fields
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Profile(known)
	p.Raw = raw
	return nil
}

// NewTask holds the fields sent when creating a task.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// TaskPatch holds a partial task update. Nil fields are not sent.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Status == nil
}

// Envelope wraps every server reply.
// Code is nil when the server omitted it.
type Envelope[T any] struct {
	Code    *int   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data"`
}

// OK reports whether the envelope carries the success code.
func (e Envelope[T]) OK() bool {
	return e.Code != nil && *e.Code == SuccessCode
}

// TaskPage is the payload of the task list endpoint.
// Items is nil when the server sent no items.
type TaskPage struct {
	Total int64  `json:"total"`
	Items []Task `json:"items"`
}

// RejectedError reports a reply that arrived fine but whose envelope code
// was not the success code.
type RejectedError struct {
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rejected by server (code %d)", e.Code)
	}
	return fmt.Sprintf("rejected by server (code %d): %s", e.Code, e.Message)
}

// Rejection returns the business failure carried by e, or nil if e is OK.
func Rejection[T any](e Envelope[T]) error {
	if e.OK() {
		return nil
	}
	code := 0
	if e.Code != nil {
		code = *e.Code
	}
	msg := e.Message
	if e.Error != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Error)
	}
	return &RejectedError{Code: code, Message: msg}
}
