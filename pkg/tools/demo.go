package tools

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// DemoStep is one call of the tool server smoke test.
type DemoStep struct {
	Title     string
	Tool      string
	A, B      float64
	WantError bool
}

var DemoSteps = []DemoStep{
	{Title: "Add (5 + 3)", Tool: "add", A: 5, B: 3},
	{Title: "Subtract (10 - 4)", Tool: "subtract", A: 10, B: 4},
	{Title: "Multiply (6 * 7)", Tool: "multiply", A: 6, B: 7},
	{Title: "Divide (20 / 5)", Tool: "divide", A: 20, B: 5},
	{Title: "Divide by Zero (5 / 0)", Tool: "divide", A: 5, B: 0, WantError: true},
}

/*
RunDemo walks through DemoSteps against the tool server and writes one line
per step to out. A failure is only fatal when the step did not expect it.
*/
func RunDemo(ctx context.Context, client *RPCToolClient, out io.Writer) error {
	for _, step := range DemoSteps {
		fmt.Fprintf(out, "--- Testing %s ---\n", step.Title)

		result, err := client.CallTool(ctx, step.Tool, map[string]any{"a": step.A, "b": step.B})

		var toolErr *ToolClientError

		switch {
		case err != nil && step.WantError && stderrors.As(err, &toolErr):
			fmt.Fprintf(out, "Caught expected error: %v\n", err)
		case err != nil:
			log.Error("demo step failed", "step", step.Title, "error", err)
			return err
		case step.WantError && IsToolError(result):
			fmt.Fprintf(out, "Caught expected error: %s\n", ResultText(result))
		case step.WantError:
			return fmt.Errorf("%s: expected an error, got %s", step.Title, ResultText(result))
		default:
			fmt.Fprintf(out, "Result: %s\n", ResultText(result))
		}
	}

	return nil
}
