package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/theapemachine/a2a-calculator/pkg/config"
)

const ollamaBaseURL = "http://localhost:11434/v1"

/*
OpenAIProvider talks to any endpoint speaking the OpenAI chat completions
API, LiteLLM proxies included.
*/
type OpenAIProvider struct {
	client   openai.Client
	model    string
	maxSteps int
}

func NewOpenAIProvider(cfg config.LLM, maxSteps int) *OpenAIProvider {
	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}

	baseURL := cfg.APIBase

	if baseURL == "" && cfg.Provider == "ollama" {
		baseURL = ollamaBaseURL
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client:   openai.NewClient(options...),
		model:    modelName(cfg.Model),
		maxSteps: maxSteps,
	}
}

func (prvdr *OpenAIProvider) Generate(
	ctx context.Context, system string, prompt string, tools []mcp.Tool, call ToolCaller,
) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(prvdr.model),
		Messages: prvdr.convertMessages(system, prompt),
		Tools:    prvdr.convertTools(tools),
	}

	for step := 0; step < prvdr.maxSteps; step++ {
		completion, err := prvdr.client.Chat.Completions.New(ctx, params)

		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}

		message := completion.Choices[0].Message

		if len(message.ToolCalls) == 0 {
			return message.Content, nil
		}

		params.Messages = append(params.Messages, message.ToParam())

		for _, toolCall := range message.ToolCalls {
			log.Info("openai tool call", "name", toolCall.Function.Name, "args", toolCall.Function.Arguments)

			var content string

			if args, err := parseArguments(toolCall.Function.Arguments); err != nil {
				content = err.Error()
			} else {
				content, _ = executeToolCall(ctx, call, toolCall.Function.Name, args)
			}

			params.Messages = append(params.Messages, openai.ToolMessage(content, toolCall.ID))
		}
	}

	return "", errMaxSteps(prvdr.maxSteps)
}

func (prvdr *OpenAIProvider) convertMessages(system string, prompt string) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, 2)

	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	return append(out, openai.UserMessage(prompt))
}

func (prvdr *OpenAIProvider) convertTools(tools []mcp.Tool) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))

	for _, tool := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(inputSchema(tool)),
			},
		})
	}

	return out
}
