package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

/*
Toolset is the agent's view of a remote MCP server. Every operation opens
a short-lived session carrying the headers it is given, so per-request
credentials reach the server on listing as well as on calls.
*/
type Toolset struct {
	url        string
	timeout    time.Duration
	clientName string
	version    string
}

func NewToolset(url string, timeout time.Duration, clientName string, version string) *Toolset {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}

	return &Toolset{
		url:        url,
		timeout:    timeout,
		clientName: clientName,
		version:    version,
	}
}

func (toolset *Toolset) URL() string {
	return toolset.url
}

func (toolset *Toolset) connect(ctx context.Context, headers map[string]string) (*client.Client, error) {
	httpTransport, err := transport.NewStreamableHTTP(
		toolset.url,
		transport.WithHTTPHeaders(headers),
		transport.WithHTTPTimeout(toolset.timeout),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create MCP transport: %w", err)
	}

	c := client.NewClient(httpTransport)

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP transport: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    toolset.clientName,
		Version: toolset.version,
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	serverInfo, err := c.Initialize(ctx, initRequest)

	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	log.Debug(
		"connected to MCP server",
		"url", toolset.url,
		"serverName", serverInfo.ServerInfo.Name,
		"serverVersion", serverInfo.ServerInfo.Version,
	)

	return c, nil
}

/*
ListTools returns the tools the server offers. headers are always sent,
an empty map simply sends none.
*/
func (toolset *Toolset) ListTools(ctx context.Context, headers map[string]string) ([]mcp.Tool, error) {
	c, err := toolset.connect(ctx, headers)

	if err != nil {
		return nil, err
	}

	defer c.Close()

	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})

	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	return result.Tools, nil
}

/*
CallTool runs the named tool and returns its text. A tool reporting an
error result comes back as an error carrying that text.
*/
func (toolset *Toolset) CallTool(
	ctx context.Context, headers map[string]string, name string, args map[string]any,
) (string, error) {
	c, err := toolset.connect(ctx, headers)

	if err != nil {
		return "", err
	}

	defer c.Close()

	callToolRequest := mcp.CallToolRequest{}
	callToolRequest.Params.Name = name
	callToolRequest.Params.Arguments = args

	callToolResult, err := c.CallTool(ctx, callToolRequest)

	if err != nil {
		return "", fmt.Errorf("failed to call tool %s: %w", name, err)
	}

	text := ContentText(callToolResult.Content)

	if callToolResult.IsError {
		return "", errors.New(text)
	}

	return text, nil
}

// ContentText returns the first text content, or the JSON of the first item.
func ContentText(content []mcp.Content) string {
	if len(content) == 0 {
		return ""
	}

	for _, item := range content {
		if textContent, ok := item.(mcp.TextContent); ok {
			return textContent.Text
		}
	}

	jsonResult, err := json.Marshal(content[0])

	if err != nil {
		log.Warn("failed to marshal tool result content", "error", err)
		return ""
	}

	return string(jsonResult)
}
