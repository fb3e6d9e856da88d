package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"google.golang.org/genai"
)

/*
GoogleProvider talks to Gemini through the genai SDK.
*/
type GoogleProvider struct {
	client   *genai.Client
	model    string
	maxSteps int
}

func NewGoogleProvider(ctx context.Context, cfg config.LLM, maxSteps int) (*GoogleProvider, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	if cfg.APIBase != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.APIBase
	}

	client, err := genai.NewClient(ctx, clientConfig)

	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GoogleProvider{
		client:   client,
		model:    cfg.Model,
		maxSteps: maxSteps,
	}, nil
}

func (prvdr *GoogleProvider) Generate(
	ctx context.Context, system string, prompt string, tools []mcp.Tool, call ToolCaller,
) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	generateContentConfig := &genai.GenerateContentConfig{
		Tools: prvdr.convertTools(tools),
	}

	if system != "" {
		generateContentConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	for step := 0; step < prvdr.maxSteps; step++ {
		resp, err := prvdr.client.Models.GenerateContent(ctx, prvdr.model, contents, generateContentConfig)

		if err != nil {
			return "", fmt.Errorf("gemini request failed: %w", err)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", errors.New("gemini returned no content")
		}

		functionCalls := resp.FunctionCalls()

		if len(functionCalls) == 0 {
			return resp.Text(), nil
		}

		contents = append(contents, resp.Candidates[0].Content)
		parts := make([]*genai.Part, 0, len(functionCalls))

		for _, fc := range functionCalls {
			log.Info("gemini tool call", "name", fc.Name, "args", fc.Args)

			content, isError := executeToolCall(ctx, call, fc.Name, fc.Args)
			response := map[string]any{"output": content}

			if isError {
				response = map[string]any{"error": content}
			}

			part := genai.NewPartFromFunctionResponse(fc.Name, response)
			part.FunctionResponse.ID = fc.ID
			parts = append(parts, part)
		}

		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", errMaxSteps(prvdr.maxSteps)
}

func (prvdr *GoogleProvider) convertTools(tools []mcp.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, tool := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:                 tool.Name,
			Description:          tool.Description,
			ParametersJsonSchema: inputSchema(tool),
		})
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}
