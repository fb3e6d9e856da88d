package a2a

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type Task struct {
	Kind      string         `json:"kind"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

/*
NewTask creates a submitted task. Empty ids are generated.
*/
func NewTask(id, contextID string) *Task {
	if id == "" {
		id = uuid.NewString()
	}

	if contextID == "" {
		contextID = uuid.NewString()
	}

	task := &Task{
		Kind:      KindTask,
		ID:        id,
		ContextID: contextID,
	}

	task.ToStatus(TaskStateSubmitted, nil)

	return task
}

func (task *Task) ToStatus(state TaskState, message *Message) {
	log.Debug("task status update", "task", task.ID, "state", state)

	if message != nil {
		message.TaskID = task.ID
		message.ContextID = task.ContextID
	}

	task.Status.State = state
	task.Status.Message = message
	task.Status.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
}

func (task *Task) LastMessage() *Message {
	if len(task.History) == 0 {
		return nil
	}

	return &task.History[len(task.History)-1]
}

/*
TrimHistory keeps only the most recent n history entries. A nil or negative
length leaves the history untouched.
*/
func (task *Task) TrimHistory(length *int) {
	if length == nil || *length < 0 || len(task.History) <= *length {
		return
	}

	task.History = task.History[len(task.History)-*length:]
}

// MessageSendConfiguration tunes a message/send call.
type MessageSendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	HistoryLength       *int     `json:"historyLength,omitempty"`
	Blocking            *bool    `json:"blocking,omitempty"`
}

// MessageSendParams are the params of message/send.
type MessageSendParams struct {
	Message       Message                   `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
}

// HistoryLength returns the requested history length, if any.
func (params MessageSendParams) HistoryLength() *int {
	if params.Configuration == nil {
		return nil
	}

	return params.Configuration.HistoryLength
}

// TaskIDParams represents the base parameters for task ID-based operations.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams represents the parameters for querying task information.
type TaskQueryParams struct {
	TaskIDParams
	HistoryLength *int `json:"historyLength,omitempty"`
}

func (task *Task) String() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	indent := "   "
	bullet := "│ "

	sb.WriteString(headerStyle.Render("Task") + "\n")
	sb.WriteString(bullet + labelStyle.Render("ID: ") + valueStyle.Render(task.ID) + "\n")
	sb.WriteString(bullet + labelStyle.Render("Context: ") + valueStyle.Render(task.ContextID) + "\n")
	sb.WriteString(bullet + labelStyle.Render("State: ") + valueStyle.Render(string(task.Status.State)) + "\n")

	if text := task.Status.Message.Text(); text != "" {
		sb.WriteString(bullet + labelStyle.Render("Message: ") + valueStyle.Render(text) + "\n")
	}

	if len(task.History) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("History") + "\n")

		for i, message := range task.History {
			sb.WriteString(
				bullet + indent + labelStyle.Render(fmt.Sprintf("%d %s: ", i+1, message.Role)) +
					valueStyle.Render(message.Text()) + "\n",
			)
		}
	}

	if len(task.Artifacts) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Artifacts") + "\n")

		for _, artifact := range task.Artifacts {
			sb.WriteString(
				bullet + indent + labelStyle.Render(artifact.Name+": ") +
					valueStyle.Render(artifact.Text()) + "\n",
			)
		}
	}

	return sb.String()
}
