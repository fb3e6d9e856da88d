package tools

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/a2a-calculator/pkg/metrics"
)

/*
ErrDivideByZero is returned by Divide when the divisor is zero. The text is
capitalized because clients match on it as the tool's error message.
*/
var ErrDivideByZero = errors.New("Cannot divide by zero")

func Add(a, b float64) (float64, error) {
	return a + b, nil
}

func Subtract(a, b float64) (float64, error) {
	return a - b, nil
}

func Multiply(a, b float64) (float64, error) {
	return a * b, nil
}

func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}

	return a / b, nil
}

type operation struct {
	name        string
	description string
	fn          func(a, b float64) (float64, error)
}

var operations = []operation{
	{"add", "Add two numbers.", Add},
	{"subtract", "Subtract b from a.", Subtract},
	{"multiply", "Multiply two numbers.", Multiply},
	{"divide", "Divide a by b.", Divide},
}

// CalculatorToolNames lists the registered tool names in order.
func CalculatorToolNames() []string {
	names := make([]string, len(operations))

	for i, op := range operations {
		names[i] = op.name
	}

	return names
}

func newCalculatorTool(op operation) mcp.Tool {
	return mcp.NewTool(
		op.name,
		mcp.WithDescription(op.description),
		mcp.WithNumber("a",
			mcp.Description("First operand"),
			mcp.Required(),
		),
		mcp.WithNumber("b",
			mcp.Description("Second operand"),
			mcp.Required(),
		),
	)
}

/*
RegisterCalculatorTools adds add, subtract, multiply and divide to srv.
A failing operation makes the handler return an error, which the MCP server
reports to the caller as a JSON-RPC error.
*/
func RegisterCalculatorTools(srv *server.MCPServer) {
	for _, op := range operations {
		srv.AddTool(newCalculatorTool(op), newArithmeticHandler(op))
	}
}

func newArithmeticHandler(op operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, err := req.RequireFloat("a")

		if err != nil {
			metrics.ToolCalls.WithLabelValues(op.name, "invalid").Inc()
			return nil, err
		}

		b, err := req.RequireFloat("b")

		if err != nil {
			metrics.ToolCalls.WithLabelValues(op.name, "invalid").Inc()
			return nil, err
		}

		result, err := op.fn(a, b)

		if err != nil {
			log.Warn("calculator tool failed", "tool", op.name, "a", a, "b", b, "error", err)
			metrics.ToolCalls.WithLabelValues(op.name, "error").Inc()
			return nil, err
		}

		log.Debug("calculator tool", "tool", op.name, "a", a, "b", b, "result", result)
		metrics.ToolCalls.WithLabelValues(op.name, "ok").Inc()

		return mcp.NewToolResultText(FormatNumber(result)), nil
	}
}

// FormatNumber renders f without a trailing ".0" for whole numbers.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
