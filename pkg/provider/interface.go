package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/a2a-calculator/pkg/config"
)

// DefaultMaxSteps bounds the number of model turns in one Generate call.
const DefaultMaxSteps = 8

/*
ToolCaller executes a tool the model asked for and returns its text.
*/
type ToolCaller func(ctx context.Context, name string, args map[string]any) (string, error)

/*
Interface is a chat model that can call tools. Generate runs the model on
prompt, executes every tool call through call, feeds the results back and
returns the final text once the model stops asking for tools.
*/
type Interface interface {
	Generate(ctx context.Context, system string, prompt string, tools []mcp.Tool, call ToolCaller) (string, error)
}

/*
New selects a model implementation for cfg. OpenAI-compatible endpoints
cover LiteLLM proxies, Ollama and local servers; everything else goes to
Gemini.
*/
func New(ctx context.Context, cfg config.LLM, maxSteps int) (Interface, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	if cfg.UsesOpenAICompatible() {
		log.Info("using OpenAI-compatible model", "provider", cfg.Provider, "model", cfg.Model, "apiBase", cfg.APIBase)
		return NewOpenAIProvider(cfg, maxSteps), nil
	}

	log.Info("using Gemini model", "model", cfg.Model)

	return NewGoogleProvider(ctx, cfg, maxSteps)
}

/*
inputSchema renders the MCP tool input schema as a JSON schema object.
*/
func inputSchema(tool mcp.Tool) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}

	if tool.InputSchema.Type != "" {
		schema["type"] = tool.InputSchema.Type
	}

	if len(tool.InputSchema.Properties) > 0 {
		schema["properties"] = tool.InputSchema.Properties
	}

	if len(tool.InputSchema.Required) > 0 {
		schema["required"] = tool.InputSchema.Required
	}

	return schema
}

var routingPrefixes = []string{"openai/", "ollama/", "ollama_chat/", "litellm_proxy/", "hosted_vllm/"}

/*
modelName strips a LiteLLM style routing prefix such as "openai/" so that
the bare model id reaches the OpenAI-compatible endpoint.
*/
func modelName(model string) string {
	for _, prefix := range routingPrefixes {
		if strings.HasPrefix(model, prefix) {
			return strings.TrimPrefix(model, prefix)
		}
	}

	return model
}

func errMaxSteps(steps int) error {
	return fmt.Errorf("model did not finish within %d steps", steps)
}
