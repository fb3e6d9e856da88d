package invoker

import (
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
)

// NoResponseContent is returned when a result carries no usable text.
const NoResponseContent = "No response content found."

/*
ExtractText returns the single best user-facing text of a message/send
result. For a Task the status message wins, then the most recent agent
message in the history, then the most recent artifact with text.
*/
func ExtractText(result *a2a.SendMessageResult) string {
	if result == nil {
		return NoResponseContent
	}

	if result.Message != nil {
		return orFallback(result.Message.Text())
	}

	if result.Task != nil {
		return ExtractTaskText(result.Task)
	}

	return NoResponseContent
}

func ExtractTaskText(task *a2a.Task) string {
	if text := task.Status.Message.Text(); text != "" {
		return text
	}

	for i := len(task.History) - 1; i >= 0; i-- {
		message := task.History[i]

		if message.Role != a2a.RoleAgent {
			continue
		}

		if text := message.Text(); text != "" {
			return text
		}
	}

	for i := len(task.Artifacts) - 1; i >= 0; i-- {
		if text := task.Artifacts[i].Text(); text != "" {
			return text
		}
	}

	return NoResponseContent
}

func orFallback(text string) string {
	if text == "" {
		return NoResponseContent
	}

	return text
}
