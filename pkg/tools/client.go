package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-calculator/pkg/jsonrpc"
	"github.com/theapemachine/a2a-calculator/pkg/utils"
)

// DefaultClientTimeout bounds a single tool call.
const DefaultClientTimeout = 30 * time.Second

/*
ToolClientError wraps every failure of RPCToolClient: HTTP status and
connection errors as well as JSON-RPC error members.
*/
type ToolClientError struct {
	Message string
	Err     error
}

func (e *ToolClientError) Error() string {
	return e.Message
}

func (e *ToolClientError) Unwrap() error {
	return e.Err
}

/*
RPCToolClient calls arbitrary tools on an MCP server with plain JSON-RPC
over HTTP. It does not negotiate a session, so it suits stateless servers.
*/
type RPCToolClient struct {
	rpc *jsonrpc.RPCClient
}

func NewRPCToolClient(baseURL string, token string, timeout time.Duration) *RPCToolClient {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}

	return &RPCToolClient{
		rpc: jsonrpc.NewRPCClient(
			utils.EnsureTrailingSlash(baseURL),
			jsonrpc.WithTimeout(timeout),
			jsonrpc.WithBearerToken(token),
		),
	}
}

/*
CallTool invokes tools/call for name with args and returns the result
object of the response.
*/
func (client *RPCToolClient) CallTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	log.Debug("calling tool", "tool", name, "args", args)

	resp, err := client.rpc.Call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})

	if err != nil {
		return nil, &ToolClientError{Message: fmt.Sprintf("HTTP Error: %v", err), Err: err}
	}

	if resp.Error != nil {
		return nil, &ToolClientError{Message: fmt.Sprintf("RPC Error: %s", resp.Error.Message), Err: resp.Error}
	}

	result := map[string]any{}

	if err := resp.Decode(&result); err != nil {
		return nil, &ToolClientError{Message: fmt.Sprintf("HTTP Error: invalid result: %v", err), Err: err}
	}

	return result, nil
}

/*
ResultText returns the text of the first text content item of a tools/call
result, or the JSON encoding of the result when there is none.
*/
func ResultText(result map[string]any) string {
	if content, ok := result["content"].([]any); ok {
		for _, item := range content {
			entry, ok := item.(map[string]any)

			if !ok || entry["type"] != "text" {
				continue
			}

			if text, ok := entry["text"].(string); ok {
				return text
			}
		}
	}

	buf, err := json.Marshal(result)

	if err != nil {
		return fmt.Sprintf("%v", result)
	}

	return string(buf)
}

// IsToolError reports whether a tools/call result is flagged as an error.
func IsToolError(result map[string]any) bool {
	isError, _ := result["isError"].(bool)
	return isError
}
