package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
)

/*
executeToolCall runs a single tool call and returns the text to hand back
to the model. A failing tool does not abort the conversation, the model
sees the error and may answer with it.
*/
func executeToolCall(
	ctx context.Context, call ToolCaller, name string, args map[string]any,
) (content string, isError bool) {
	log.Debug("executing tool", "tool", name, "args", args)

	result, err := call(ctx, name, args)

	if err != nil {
		log.Warn("tool call failed", "tool", name, "error", err)
		return fmt.Sprintf("Error executing tool %s: %v", name, err), true
	}

	log.Debug("tool executed", "tool", name, "result", result)

	return result, false
}

/*
parseArguments decodes the JSON argument string some providers use for
tool calls. An empty string is an empty argument set.
*/
func parseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}

	if raw == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments %q: %w", raw, err)
	}

	return args, nil
}
