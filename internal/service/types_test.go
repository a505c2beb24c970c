package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskUnmarshalKeepsUnknownFields(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":7,"title":"Buy milk","status":"todo","user_id":3}`), &task)
	require.NoError(t, err)

	assert.Equal(t, int64(7), task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, StatusTodo, task.Status)
	assert.JSONEq(t, `3`, string(task.Raw["user_id"]))

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"title":"Buy milk","description":"","due_date":"","status":"todo","user_id":3}`, string(out))
}

func TestTaskMergeServerFieldsWin(t *testing.T) {
	var local, reply Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Write report","description":"draft","status":"todo","user_id":3}`), &local))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"status":"done"}`), &reply))

	merged, err := local.Merge(reply)
	require.NoError(t, err)

	assert.Equal(t, StatusDone, merged.Status)
	assert.Equal(t, "Write report", merged.Title)
	assert.Equal(t, "draft", merged.Description)
	assert.JSONEq(t, `3`, string(merged.Raw["user_id"]))
}

func TestTaskMergeKeepsUntouchedNulls(t *testing.T) {
	var local, reply Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Write report","due_date":null,"extra":{"a":1},"status":"todo"}`), &local))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"status":"done"}`), &reply))

	merged, err := local.Merge(reply)
	require.NoError(t, err)

	assert.Equal(t, StatusDone, merged.Status)
	assert.Equal(t, "Write report", merged.Title)
	assert.Equal(t, "", merged.DueDate)
	assert.Equal(t, "null", string(merged.Raw["due_date"]))
	assert.JSONEq(t, `{"a":1}`, string(merged.Raw["extra"]))
}

func TestTaskMergeFillsKnownFieldsMissingFromRaw(t *testing.T) {
	local := Task{ID: 1, Title: "a", Status: StatusTodo, Raw: Fields{"id": json.RawMessage(`1`)}}
	var reply Task
	require.NoError(t, json.Unmarshal([]byte(`{"status":"done"}`), &reply))

	merged, err := local.Merge(reply)
	require.NoError(t, err)

	assert.Equal(t, int64(1), merged.ID)
	assert.Equal(t, "a", merged.Title)
	assert.Equal(t, StatusDone, merged.Status)
}

func TestTaskMergeWithoutRawIsNoop(t *testing.T) {
	local := Task{ID: 1, Title: "a", Status: StatusTodo}
	merged, err := local.Merge(Task{Title: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, local, merged)
}

func TestToggledStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{StatusDone, StatusTodo},
		{StatusTodo, StatusDone},
		{StatusInProgress, StatusDone},
		{"", StatusDone},
		{"unknown", StatusDone},
	}
	for _, tt := range tests {
		got := Task{Status: tt.status}.ToggledStatus()
		assert.Equal(t, tt.want, got, "status %q", tt.status)
	}
}

func TestTaskDone(t *testing.T) {
	assert.True(t, Task{Status: StatusDone}.Done())
	for _, status := range []string{StatusTodo, StatusInProgress, "", "Done"} {
		assert.False(t, Task{Status: status}.Done(), "status %q", status)
	}
}

func TestEnvelopeOK(t *testing.T) {
	var ok, rejected, missing Envelope[Task]
	require.NoError(t, json.Unmarshal([]byte(`{"code":200,"data":{"id":7}}`), &ok))
	require.NoError(t, json.Unmarshal([]byte(`{"code":500,"message":"create task failed","error":"db down"}`), &rejected))
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"id":7}}`), &missing))

	assert.True(t, ok.OK())
	assert.NoError(t, Rejection(ok))

	assert.False(t, rejected.OK())
	var rerr *RejectedError
	require.ErrorAs(t, Rejection(rejected), &rerr)
	assert.Equal(t, 500, rerr.Code)
	assert.Contains(t, rerr.Error(), "db down")

	assert.False(t, missing.OK())
	require.ErrorAs(t, Rejection(missing), &rerr)
	assert.Equal(t, 0, rerr.Code)
}

func TestTaskPatchOmitsNilFields(t *testing.T) {
	done := StatusDone
	b, err := json.Marshal(TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"done"}`, string(b))
	assert.True(t, TaskPatch{}.Empty())
}
