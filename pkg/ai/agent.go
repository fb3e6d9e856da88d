package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/a2a-calculator/pkg/auth"
	"github.com/theapemachine/a2a-calculator/pkg/provider"
)

const (
	AgentName        = "calculator_agent"
	AgentDescription = "Calculator agent backed by MCP tools."
	Instruction      = "You are a calculator. Use the available tools for every arithmetic " +
		"operation and answer with the result."
)

/*
AgentError is returned for failures the agent knows about, like an
unreachable tool server or a failing model call.
*/
type AgentError struct {
	Message string
	Err     error
}

func (e *AgentError) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

/*
Toolset is the remote tool server as seen by the agent. Headers are passed
on every call, there is no way to reach the server without them.
*/
type Toolset interface {
	ListTools(ctx context.Context, headers map[string]string) ([]mcp.Tool, error)
	CallTool(ctx context.Context, headers map[string]string, name string, args map[string]any) (string, error)
}

/*
CalculatorAgent answers prompts with a tool-calling model whose tools are
served by an MCP calculator.
*/
type CalculatorAgent struct {
	model         provider.Interface
	toolset       Toolset
	fallbackToken string
}

type AgentOption func(*CalculatorAgent)

func NewCalculatorAgent(model provider.Interface, toolset Toolset, options ...AgentOption) *CalculatorAgent {
	agent := &CalculatorAgent{
		model:   model,
		toolset: toolset,
	}

	for _, option := range options {
		option(agent)
	}

	return agent
}

/*
WithFallbackToken sets the bearer token sent to the tool server when the
request context carries none.
*/
func WithFallbackToken(token string) AgentOption {
	return func(agent *CalculatorAgent) {
		agent.fallbackToken = token
	}
}

func (agent *CalculatorAgent) headers(ctx context.Context) map[string]string {
	return auth.Headers(ctx, agent.fallbackToken)
}

/*
Run answers prompt. The caller's token, if any, is forwarded to the tool
server on the listing as well as on every tool call.
*/
func (agent *CalculatorAgent) Run(ctx context.Context, prompt string) (string, error) {
	if agent.model == nil {
		return "", &AgentError{Message: "no model configured"}
	}

	headers := agent.headers(ctx)

	tools, err := agent.toolset.ListTools(ctx, headers)

	if err != nil {
		return "", &AgentError{Message: "failed to list calculator tools", Err: err}
	}

	log.Info("running agent", "prompt", prompt, "tools", len(tools))

	caller := func(ctx context.Context, name string, args map[string]any) (string, error) {
		return agent.toolset.CallTool(ctx, headers, name, args)
	}

	answer, err := agent.model.Generate(ctx, Instruction, prompt, tools, caller)

	if err != nil {
		return "", &AgentError{Message: "model failed", Err: err}
	}

	return strings.TrimSpace(answer), nil
}

/*
RunSimpleEval bypasses the model: expr is "<tool> <a> <b>" and the named
tool is called directly.
*/
func (agent *CalculatorAgent) RunSimpleEval(ctx context.Context, expr string) string {
	fields := strings.Fields(expr)

	if len(fields) < 3 {
		return "Could not parse simple command."
	}

	a, err := strconv.ParseFloat(fields[1], 64)

	if err != nil {
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	b, err := strconv.ParseFloat(fields[2], 64)

	if err != nil {
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	out, err := agent.toolset.CallTool(ctx, agent.headers(ctx), fields[0], map[string]any{"a": a, "b": b})

	if err != nil {
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	return out
}
