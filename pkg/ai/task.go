package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
	"github.com/theapemachine/a2a-calculator/pkg/metrics"
	"github.com/theapemachine/a2a-calculator/pkg/stores"
)

// Runner produces the answer to a prompt.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

/*
TaskManager turns message/send, tasks/get and tasks/cancel calls into task
state held in a TaskStore. Agent runs are synchronous; a cancel arriving
while a run is in flight cancels its context.
*/
type TaskManager struct {
	taskStore stores.TaskStore
	runner    Runner
	mu        sync.Mutex
	running   map[string]context.CancelFunc
}

type TaskManagerOption func(*TaskManager)

func NewTaskManager(options ...TaskManagerOption) (*TaskManager, error) {
	manager := &TaskManager{
		running: make(map[string]context.CancelFunc),
	}

	for _, option := range options {
		option(manager)
	}

	if manager.taskStore == nil {
		log.Error("missing task store")
		return nil, stderrors.New("task manager requires a task store")
	}

	if manager.runner == nil {
		log.Error("missing runner")
		return nil, stderrors.New("task manager requires a runner")
	}

	return manager, nil
}

func WithTaskStore(taskStore stores.TaskStore) TaskManagerOption {
	return func(manager *TaskManager) {
		manager.taskStore = taskStore
	}
}

func WithRunner(runner Runner) TaskManagerOption {
	return func(manager *TaskManager) {
		manager.runner = runner
	}
}

/*
ValidateMessage checks that message comes from the user and carries text.
*/
func ValidateMessage(message a2a.Message) *errors.RpcError {
	if message.Role != a2a.RoleUser {
		return errors.ErrInvalidParams.WithMessagef("Message role must be 'user'.")
	}

	var combined strings.Builder

	for _, part := range message.Parts {
		combined.WriteString(part.Text)
	}

	if strings.TrimSpace(combined.String()) == "" {
		return errors.ErrInvalidParams.WithMessagef("Message must include at least one non-empty text part.")
	}

	return nil
}

/*
BuildPrompt renders history as "role: text" lines. A positive historyLength
keeps only that many of the most recent messages.
*/
func BuildPrompt(history []a2a.Message, historyLength *int) string {
	if historyLength != nil && *historyLength > 0 && len(history) > *historyLength {
		history = history[len(history)-*historyLength:]
	}

	lines := make([]string, 0, len(history))

	for i := range history {
		text := history[i].Text()

		if text == "" {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: %s", history[i].Role, text))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

/*
SendMessage runs the agent on the conversation the message belongs to and
returns the resulting task. A message naming an existing task continues it.
The answer is written under the store lock, so a cancel that lands while the
agent runs is never overwritten.
*/
func (manager *TaskManager) SendMessage(
	ctx context.Context, params a2a.MessageSendParams,
) (*a2a.Task, *errors.RpcError) {
	if rpcErr := ValidateMessage(params.Message); rpcErr != nil {
		return nil, rpcErr
	}

	task, rpcErr := manager.selectTask(ctx, params.Message)

	if rpcErr != nil {
		return nil, rpcErr
	}

	started := time.Now()
	prompt := BuildPrompt(task.History, params.HistoryLength())
	state, response := a2a.TaskStateRejected, "Message must include at least one non-empty text part."

	if prompt != "" {
		state, response = manager.run(ctx, task.ID, prompt)
	}

	canceled := false

	task, rpcErr = manager.taskStore.Update(ctx, task.ID, func(current *a2a.Task) *errors.RpcError {
		if current.Status.State == a2a.TaskStateCanceled {
			canceled = true
			return nil
		}

		message := a2a.NewTextMessage(a2a.RoleAgent, response)
		current.ToStatus(state, message)
		current.History = append(current.History, *message)

		return nil
	})

	if rpcErr != nil {
		return nil, rpcErr
	}

	if canceled {
		log.Info("task was canceled during the run", "task", task.ID)
		state = a2a.TaskStateCanceled
	}

	metrics.ObserveRun(string(state), started)
	log.Info("task finished", "task", task.ID, "state", state)

	return task, nil
}

/*
selectTask records the user message on a new task, or on the task it names,
and marks that task as working.
*/
func (manager *TaskManager) selectTask(ctx context.Context, message a2a.Message) (*a2a.Task, *errors.RpcError) {
	if message.TaskID == "" {
		task := a2a.NewTask("", message.ContextID)
		message.TaskID, message.ContextID = task.ID, task.ContextID
		task.History = append(task.History, message)
		task.ToStatus(a2a.TaskStateWorking, nil)

		return task, manager.taskStore.Save(ctx, task)
	}

	return manager.taskStore.Update(ctx, message.TaskID, func(task *a2a.Task) *errors.RpcError {
		if message.ContextID != "" && message.ContextID != task.ContextID {
			return errors.ErrInvalidParams.WithMessagef(
				"message contextId %s does not match task %s", message.ContextID, task.ID,
			)
		}

		message.ContextID = task.ContextID
		task.History = append(task.History, message)
		task.ToStatus(a2a.TaskStateWorking, nil)

		return nil
	})
}

func (manager *TaskManager) run(ctx context.Context, taskID string, prompt string) (state a2a.TaskState, response string) {
	ctx, cancel := context.WithCancel(ctx)

	manager.mu.Lock()
	manager.running[taskID] = cancel
	manager.mu.Unlock()

	defer func() {
		manager.mu.Lock()
		delete(manager.running, taskID)
		manager.mu.Unlock()
		cancel()
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("agent panicked", "task", taskID, "panic", r)
			state, response = a2a.TaskStateFailed, fmt.Sprintf("Internal error: %v", r)
		}
	}()

	answer, err := manager.runner.Run(ctx, prompt)

	if err == nil {
		return a2a.TaskStateCompleted, answer
	}

	var agentErr *AgentError

	if stderrors.As(err, &agentErr) {
		log.Error("agent execution error", "task", taskID, "error", err)
		return a2a.TaskStateFailed, fmt.Sprintf("Agent error: %v", err)
	}

	log.Error("unexpected error during agent execution", "task", taskID, "error", err)

	return a2a.TaskStateFailed, fmt.Sprintf("Internal error: %v", err)
}

func (manager *TaskManager) GetTask(
	ctx context.Context, params a2a.TaskQueryParams,
) (*a2a.Task, *errors.RpcError) {
	return manager.taskStore.Get(ctx, params.ID, params.HistoryLength)
}

/*
CancelTask cancels a task that has not reached a terminal state and stops
its agent run if one is in flight.
*/
func (manager *TaskManager) CancelTask(
	ctx context.Context, params a2a.TaskIDParams,
) (*a2a.Task, *errors.RpcError) {
	task, rpcErr := manager.taskStore.Cancel(ctx, params.ID)

	if rpcErr != nil {
		return nil, rpcErr
	}

	manager.mu.Lock()
	cancel, ok := manager.running[params.ID]
	manager.mu.Unlock()

	if ok {
		cancel()
	}

	return task, nil
}
