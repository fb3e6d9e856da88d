package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
	"github.com/theapemachine/a2a-calculator/pkg/jsonrpc"
)

// Method names of the A2A JSON-RPC binding.
const (
	MethodMessageSend      = "message/send"
	MethodMessageStream    = "message/stream"
	MethodTasksGet         = "tasks/get"
	MethodTasksCancel      = "tasks/cancel"
	MethodTasksResubscribe = "tasks/resubscribe"
)

/*
Client represents an A2A protocol client. It holds no per-call state, so one
Client can be shared.
*/
type Client struct {
	conn  *fiberClient.Client
	token string
}

type ClientOption func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every call.
func WithToken(token string) ClientOption {
	return func(client *Client) {
		client.token = token
	}
}

/*
NewClient creates a new A2A client.
*/
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		conn: fiberClient.New(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (client *Client) headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	if client.token != "" {
		headers["Authorization"] = "Bearer " + client.token
	}

	return headers
}

/*
FetchCard performs a GET on cardURL and decodes the agent card.
*/
func (client *Client) FetchCard(ctx context.Context, cardURL string, timeout time.Duration) (*AgentCard, error) {
	res, err := client.conn.Get(cardURL, fiberClient.Config{
		Ctx:     ctx,
		Header:  client.headers(),
		Timeout: timeout,
	})

	if err != nil {
		return nil, err
	}

	defer res.Close()

	if status := res.StatusCode(); status < 200 || status > 299 {
		return nil, jsonrpc.NewHTTPStatusError(status, cardURL)
	}

	var card AgentCard

	if err := json.Unmarshal(res.Body(), &card); err != nil {
		return nil, fmt.Errorf("failed to decode agent card: %w", err)
	}

	return &card, nil
}

/*
NewSendParams wraps prompt into a user text message with a fresh message id.
*/
func NewSendParams(prompt string) MessageSendParams {
	return MessageSendParams{
		Message: *NewTextMessage(RoleUser, prompt),
	}
}

/*
SendMessage posts a message/send request to rpcURL. A JSON-RPC error member
is returned as an *errors.RpcError.
*/
func (client *Client) SendMessage(
	ctx context.Context, rpcURL string, params MessageSendParams, timeout time.Duration,
) (*SendMessageResult, error) {
	log.Debug("sending message", "url", rpcURL, "messageId", params.Message.MessageID)

	var result SendMessageResult

	if err := client.call(ctx, rpcURL, MethodMessageSend, params, timeout, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetTask fetches a task with tasks/get.
func (client *Client) GetTask(
	ctx context.Context, rpcURL string, params TaskQueryParams, timeout time.Duration,
) (*Task, error) {
	var task Task

	if err := client.call(ctx, rpcURL, MethodTasksGet, params, timeout, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// CancelTask asks the agent to cancel a task with tasks/cancel.
func (client *Client) CancelTask(
	ctx context.Context, rpcURL string, params TaskIDParams, timeout time.Duration,
) (*Task, error) {
	var task Task

	if err := client.call(ctx, rpcURL, MethodTasksCancel, params, timeout, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (client *Client) call(
	ctx context.Context, rpcURL string, method string, params any, timeout time.Duration, out any,
) error {
	req, err := jsonrpc.NewRequest(uuid.NewString(), method, params)

	if err != nil {
		return err
	}

	res, err := client.conn.Post(rpcURL, fiberClient.Config{
		Ctx:     ctx,
		Header:  client.headers(),
		Timeout: timeout,
		Body:    req,
	})

	if err != nil {
		return err
	}

	defer res.Close()

	if status := res.StatusCode(); status < 200 || status > 299 {
		return jsonrpc.NewHTTPStatusError(status, rpcURL)
	}

	var envelope struct {
		Result json.RawMessage  `json:"result"`
		Error  *errors.RpcError `json:"error"`
	}

	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Error != nil {
		return envelope.Error
	}

	// A missing result leaves out at its zero value.
	if len(envelope.Result) == 0 {
		return nil
	}

	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}

	return nil
}
