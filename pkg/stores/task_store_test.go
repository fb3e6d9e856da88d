package stores

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
	"github.com/theapemachine/a2a-calculator/pkg/utils"
)

func newTask(state a2a.TaskState, history ...string) *a2a.Task {
	task := a2a.NewTask("task1", "ctx1")

	for _, text := range history {
		task.History = append(task.History, *a2a.NewTextMessage(a2a.RoleUser, text))
	}

	task.ToStatus(state, a2a.NewTextMessage(a2a.RoleAgent, "status"))

	return task
}

func TestNewInMemoryTaskStore(t *testing.T) {
	store := NewInMemoryTaskStore()
	assert.NotNil(t, store)
	assert.Empty(t, store.tasks)
}

func TestTaskStore_SaveAndGet(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	require.Nil(t, store.Save(ctx, newTask(a2a.TaskStateCompleted, "one", "two", "three")))

	task, err := store.Get(ctx, "task1", nil)
	require.Nil(t, err)
	assert.Equal(t, "task1", task.ID)
	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	assert.Len(t, task.History, 3)

	task, err = store.Get(ctx, "task1", utils.Ptr(1))
	require.Nil(t, err)
	require.Len(t, task.History, 1)
	assert.Equal(t, "three", task.History[0].Text())

	_, err = store.Get(ctx, "missing", nil)
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrTaskNotFound.Code, err.Code)
}

func TestTaskStore_SaveRejectsEmptyID(t *testing.T) {
	store := NewInMemoryTaskStore()

	err := store.Save(context.Background(), &a2a.Task{})
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrInvalidParams.Code, err.Code)
}

func TestTaskStore_Isolation(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()
	original := newTask(a2a.TaskStateWorking, "one")

	require.Nil(t, store.Save(ctx, original))
	original.History[0].Parts[0].Text = "mutated"
	original.History = append(original.History, *a2a.NewTextMessage(a2a.RoleUser, "extra"))

	task, err := store.Get(ctx, "task1", nil)
	require.Nil(t, err)
	assert.Len(t, task.History, 1)

	task.Status.Message = nil

	again, _ := store.Get(ctx, "task1", nil)
	assert.NotNil(t, again.Status.Message)
}

func TestTaskStore_Cancel(t *testing.T) {
	tests := []struct {
		name     string
		state    a2a.TaskState
		id       string
		wantCode int
	}{
		{name: "working task", state: a2a.TaskStateWorking, id: "task1"},
		{name: "submitted task", state: a2a.TaskStateSubmitted, id: "task1"},
		{name: "unknown task", state: a2a.TaskStateWorking, id: "other", wantCode: errors.ErrTaskNotFound.Code},
		{name: "completed task", state: a2a.TaskStateCompleted, id: "task1", wantCode: errors.ErrTaskNotCancelable.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewInMemoryTaskStore()
			ctx := context.Background()
			require.Nil(t, store.Save(ctx, newTask(tt.state, "hello")))

			task, err := store.Cancel(ctx, tt.id)

			if tt.wantCode != 0 {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantCode, err.Code)
				return
			}

			require.Nil(t, err)
			assert.Equal(t, a2a.TaskStateCanceled, task.Status.State)
			assert.Equal(t, "Task canceled.", task.Status.Message.Text())
			assert.Equal(t, "Task canceled.", task.LastMessage().Text())

			stored, _ := store.Get(ctx, tt.id, nil)
			assert.Equal(t, a2a.TaskStateCanceled, stored.Status.State)
		})
	}
}

func TestTaskStore_Update(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()
	require.Nil(t, store.Save(ctx, newTask(a2a.TaskStateWorking, "hello")))

	task, err := store.Update(ctx, "task1", func(task *a2a.Task) *errors.RpcError {
		task.History = append(task.History, *a2a.NewTextMessage(a2a.RoleAgent, "hi"))
		task.ToStatus(a2a.TaskStateCompleted, nil)
		return nil
	})
	require.Nil(t, err)
	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)

	stored, _ := store.Get(ctx, "task1", nil)
	assert.Equal(t, a2a.TaskStateCompleted, stored.Status.State)
	assert.Len(t, stored.History, 2)

	_, err = store.Update(ctx, "task1", func(task *a2a.Task) *errors.RpcError {
		task.History = nil
		return errors.ErrInvalidParams.WithMessagef("nope")
	})
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrInvalidParams.Code, err.Code)

	stored, _ = store.Get(ctx, "task1", nil)
	assert.Len(t, stored.History, 2)

	_, err = store.Update(ctx, "missing", func(task *a2a.Task) *errors.RpcError { return nil })
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrTaskNotFound.Code, err.Code)
}

func TestTaskStore_UpdateConcurrentAppends(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()
	require.Nil(t, store.Save(ctx, newTask(a2a.TaskStateWorking)))

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := store.Update(ctx, "task1", func(task *a2a.Task) *errors.RpcError {
				task.History = append(task.History, *a2a.NewTextMessage(a2a.RoleUser, fmt.Sprint(i)))
				return nil
			})
			assert.Nil(t, err)
		}(i)
	}

	wg.Wait()

	stored, _ := store.Get(ctx, "task1", nil)
	assert.Len(t, stored.History, 50)
}

func TestTaskStore_UpdateSeesCancel(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()
	require.Nil(t, store.Save(ctx, newTask(a2a.TaskStateWorking, "hello")))

	_, err := store.Cancel(ctx, "task1")
	require.Nil(t, err)

	var seen a2a.TaskState

	_, err = store.Update(ctx, "task1", func(task *a2a.Task) *errors.RpcError {
		seen = task.Status.State
		return nil
	})
	require.Nil(t, err)
	assert.Equal(t, a2a.TaskStateCanceled, seen)
}
