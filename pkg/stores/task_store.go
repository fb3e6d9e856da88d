package stores

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
)

/*
TaskStore keeps the tasks an agent server has produced so that clients can
query, continue or cancel them by id.
*/
type TaskStore interface {
	Get(ctx context.Context, id string, historyLength *int) (*a2a.Task, *errors.RpcError)
	Save(ctx context.Context, task *a2a.Task) *errors.RpcError
	Cancel(ctx context.Context, id string) (*a2a.Task, *errors.RpcError)
	Update(ctx context.Context, id string, fn func(task *a2a.Task) *errors.RpcError) (*a2a.Task, *errors.RpcError)
}

/*
InMemoryTaskStore is a TaskStore backed by a map. Tasks are copied on the
way in and out, callers never share memory with the store.
*/
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		tasks: make(map[string]*a2a.Task),
	}
}

/*
Get returns a copy of the task with its history trimmed to historyLength.
*/
func (store *InMemoryTaskStore) Get(
	ctx context.Context, id string, historyLength *int,
) (*a2a.Task, *errors.RpcError) {
	store.mu.RLock()
	task, ok := store.tasks[id]
	store.mu.RUnlock()

	if !ok {
		return nil, errors.ErrTaskNotFound.WithMessagef("task %s not found", id)
	}

	out := clone(task)
	out.TrimHistory(historyLength)

	return out, nil
}

func (store *InMemoryTaskStore) Save(ctx context.Context, task *a2a.Task) *errors.RpcError {
	if task == nil || task.ID == "" {
		return errors.ErrInvalidParams.WithMessagef("task id is required")
	}

	store.mu.Lock()
	store.tasks[task.ID] = clone(task)
	store.mu.Unlock()

	return nil
}

/*
Update applies fn to a copy of the stored task and saves the result. fn runs
under the store lock, so reads it makes and the write cannot be interleaved
with a Cancel or another Update. When fn returns an error nothing is written.
*/
func (store *InMemoryTaskStore) Update(
	ctx context.Context, id string, fn func(task *a2a.Task) *errors.RpcError,
) (*a2a.Task, *errors.RpcError) {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored, ok := store.tasks[id]

	if !ok {
		return nil, errors.ErrTaskNotFound.WithMessagef("task %s not found", id)
	}

	task := clone(stored)

	if rpcErr := fn(task); rpcErr != nil {
		return nil, rpcErr
	}

	store.tasks[id] = clone(task)

	return task, nil
}

/*
Cancel moves a task to the canceled state. Tasks already in a terminal state
cannot be canceled.
*/
func (store *InMemoryTaskStore) Cancel(ctx context.Context, id string) (*a2a.Task, *errors.RpcError) {
	store.mu.Lock()
	defer store.mu.Unlock()

	task, ok := store.tasks[id]

	if !ok {
		return nil, errors.ErrTaskNotFound.WithMessagef("task %s not found", id)
	}

	if task.Status.State.Terminal() {
		return nil, errors.ErrTaskNotCancelable.WithMessagef(
			"task %s is %s and cannot be canceled", id, task.Status.State,
		)
	}

	message := a2a.NewTextMessage(a2a.RoleAgent, "Task canceled.")
	task.ToStatus(a2a.TaskStateCanceled, message)
	task.History = append(task.History, *message)

	log.Info("task canceled", "task", id)

	return clone(task), nil
}

func clone(task *a2a.Task) *a2a.Task {
	out := *task
	out.History = append([]a2a.Message(nil), task.History...)
	out.Artifacts = append([]a2a.Artifact(nil), task.Artifacts...)

	if task.Status.Message != nil {
		message := *task.Status.Message
		out.Status.Message = &message
	}

	return &out
}
