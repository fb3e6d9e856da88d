/*
Package invoker discovers an A2A agent through its card, resolves the RPC
endpoint and sends it a prompt. Failures never escape as errors: every
outcome is a string fit for printing.
*/
package invoker

import (
	"context"
	stderrors "errors"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
)

// Prefixes of the error strings returned in place of a response.
const (
	InvokeErrorPrefix = "Error invoking agent: "
	CardErrorPrefix   = "Error fetching agent card: "
)

type Invoker struct {
	cfg       config.Invoker
	endpoints Endpoints
	client    *a2a.Client
}

func NewInvoker(cfg config.Invoker) *Invoker {
	return &Invoker{
		cfg:       cfg,
		endpoints: ResolveEndpoints(cfg),
		client:    a2a.NewClient(a2a.WithToken(cfg.Token)),
	}
}

/*
FetchCard retrieves the agent card. On failure the card is nil and the
second value holds the prefixed error string.
*/
func (invoker *Invoker) FetchCard(ctx context.Context) (*a2a.AgentCard, string) {
	card, err := invoker.client.FetchCard(ctx, invoker.endpoints.CardURL, invoker.cfg.CardTimeout)

	if err != nil {
		return nil, CardErrorPrefix + err.Error()
	}

	return card, ""
}

/*
Discover fetches the card and resolves the RPC URL from it. When the card
cannot be fetched the configured RPC URL is used and the card error is
returned alongside it.
*/
func (invoker *Invoker) Discover(ctx context.Context) (string, string) {
	card, cardErr := invoker.FetchCard(ctx)

	if cardErr != "" {
		log.Warn("agent card unavailable, using configured endpoint", "url", invoker.endpoints.RPCURL, "error", cardErr)
		return invoker.endpoints.RPCURL, cardErr
	}

	rpcURL := ResolveRPCURL(card, invoker.endpoints.RPCURL)
	log.Debug("resolved rpc url", "agent", card.Name, "url", rpcURL)

	return rpcURL, ""
}

/*
Invoke sends prompt to rpcURL with message/send and returns the extracted
text, or an error string.
*/
func (invoker *Invoker) Invoke(ctx context.Context, rpcURL string, prompt string) string {
	result, err := invoker.client.SendMessage(ctx, rpcURL, a2a.NewSendParams(prompt), invoker.cfg.InvokeTimeout)

	if err != nil {
		return invokeError(err)
	}

	return ExtractText(result)
}

/*
GetTask discovers the agent and fetches a task by id. On failure the task is
nil and the second value holds the prefixed error string.
*/
func (invoker *Invoker) GetTask(ctx context.Context, id string, historyLength *int) (*a2a.Task, string) {
	rpcURL, _ := invoker.Discover(ctx)

	task, err := invoker.client.GetTask(ctx, rpcURL, a2a.TaskQueryParams{
		TaskIDParams:  a2a.TaskIDParams{ID: id},
		HistoryLength: historyLength,
	}, invoker.cfg.InvokeTimeout)

	if err != nil {
		return nil, invokeError(err)
	}

	return task, ""
}

// CancelTask discovers the agent and cancels a task by id.
func (invoker *Invoker) CancelTask(ctx context.Context, id string) (*a2a.Task, string) {
	rpcURL, _ := invoker.Discover(ctx)

	task, err := invoker.client.CancelTask(ctx, rpcURL, a2a.TaskIDParams{ID: id}, invoker.cfg.InvokeTimeout)

	if err != nil {
		return nil, invokeError(err)
	}

	return task, ""
}

func invokeError(err error) string {
	var rpcErr *errors.RpcError

	if stderrors.As(err, &rpcErr) {
		return InvokeErrorPrefix + rpcErr.Message
	}

	return InvokeErrorPrefix + err.Error()
}

/*
Run discovers the agent then invokes it. Both steps run once, in order,
with no retries.
*/
func (invoker *Invoker) Run(ctx context.Context, prompt string) string {
	rpcURL, _ := invoker.Discover(ctx)
	return invoker.Invoke(ctx, rpcURL, prompt)
}
