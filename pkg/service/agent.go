package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/ai"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
	"github.com/theapemachine/a2a-calculator/pkg/jsonrpc"
	"github.com/theapemachine/a2a-calculator/pkg/metrics"
	"github.com/theapemachine/a2a-calculator/pkg/utils"
)

const (
	AgentCardPath       = "/.well-known/agent-card.json"
	LegacyAgentCardPath = "/.well-known/agent.json"
	ProtocolVersion     = "0.3.0"
)

/*
AgentServer exposes the calculator agent over A2A JSON-RPC. It is safe for
concurrent use because RPCServer and the TaskManager are.
*/
type AgentServer struct {
	app      *fiber.App
	cfg      config.Agent
	card     a2a.AgentCard
	rpc      *jsonrpc.RPCServer
	manager  *ai.TaskManager
	verifier TokenVerifier
}

type AgentServerOption func(*AgentServer)

/*
WithVerifier makes every RPC call present a bearer token that verifier
accepts.
*/
func WithVerifier(verifier TokenVerifier) AgentServerOption {
	return func(srv *AgentServer) {
		srv.verifier = verifier
	}
}

func NewAgentServer(cfg config.Agent, manager *ai.TaskManager, options ...AgentServerOption) *AgentServer {
	srv := &AgentServer{
		app: fiber.New(fiber.Config{
			AppName:      cfg.Name,
			ServerHeader: "A2A-Agent-Server",
		}),
		cfg:     cfg,
		card:    BuildAgentCard(cfg),
		rpc:     jsonrpc.NewRPCServer(),
		manager: manager,
	}

	for _, option := range options {
		option(srv)
	}

	srv.registerMethods()
	srv.routes()

	return srv
}

/*
BuildAgentCard describes the calculator agent. The RPC url is the public
base url with the agent path appended, unless the base already ends with it.
*/
func BuildAgentCard(cfg config.Agent) a2a.AgentCard {
	path := agentPath(cfg.Path)
	url := utils.TrimTrailingSlash(cfg.BaseURL)

	if !strings.HasSuffix(url, path) {
		url += path
	}

	description := cfg.Description

	if description == "" {
		description = "An intelligent agent that performs mathematical operations using an MCP calculator server."
	}

	return a2a.AgentCard{
		ProtocolVersion:    ProtocolVersion,
		Name:               cfg.Name,
		Description:        description,
		URL:                url,
		PreferredTransport: a2a.TransportJSONRPC,
		AdditionalInterfaces: []a2a.AgentInterface{
			{URL: url, Transport: a2a.TransportJSONRPC},
		},
		Version:            cfg.Version,
		Capabilities:       a2a.AgentCapabilities{},
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Skills: []a2a.AgentSkill{{
			ID:          "calculator",
			Name:        "Calculator",
			Description: "Handles basic arithmetic by calling MCP calculator tools.",
			Tags:        []string{"math", "calculator"},
			Examples:    []string{"Calculate 5 + 3", "What is the product of 9 and 12?"},
		}},
	}
}

func agentPath(path string) string {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")

	if path == "/" {
		return "/calculator"
	}

	return path
}

func (srv *AgentServer) App() *fiber.App {
	return srv.app
}

func (srv *AgentServer) Card() a2a.AgentCard {
	return srv.card
}

func (srv *AgentServer) routes() {
	path := agentPath(srv.cfg.Path)

	srv.app.Use(logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == healthcheck.LivenessEndpoint
		},
	}))

	srv.app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	srv.app.Get("/health", handleHealth)
	srv.app.Get("/metrics", adaptor.HTTPHandler(metricsHandler()))

	for _, route := range []string{
		AgentCardPath,
		LegacyAgentCardPath,
		path + AgentCardPath,
		path + "/info",
	} {
		srv.app.Get(route, srv.handleAgentCard)
	}

	srv.app.Post(path, NewAuthMiddleware(srv.verifier), srv.handleRPC)
}

func (srv *AgentServer) handleAgentCard(c fiber.Ctx) error {
	return c.JSON(srv.card)
}

/*
handleRPC answers every JSON-RPC outcome with HTTP 200, and notifications
with 204.
*/
func (srv *AgentServer) handleRPC(c fiber.Ctx) error {
	out := srv.rpc.Handle(c.Context(), c.Body())

	if out == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (srv *AgentServer) registerMethods() {
	srv.rpc.Observe(func(method string, rpcErr *errors.RpcError) {
		var err error

		// A nil *RpcError must not become a non-nil error.
		if rpcErr != nil {
			err = rpcErr
		}

		metrics.RPCRequests.WithLabelValues(method, metrics.Outcome(err)).Inc()
	})

	srv.rpc.Register(a2a.MethodMessageSend, srv.handleSendMessage)
	srv.rpc.Register(a2a.MethodTasksGet, srv.handleGetTask)
	srv.rpc.Register(a2a.MethodTasksCancel, srv.handleCancelTask)

	for _, method := range []string{a2a.MethodMessageStream, a2a.MethodTasksResubscribe} {
		srv.rpc.Register(method, unsupported(errors.ErrUnsupportedOperation, method))
	}

	for _, method := range []string{
		"tasks/pushNotificationConfig/set",
		"tasks/pushNotificationConfig/get",
		"tasks/pushNotificationConfig/list",
		"tasks/pushNotificationConfig/delete",
	} {
		srv.rpc.Register(method, unsupported(errors.ErrPushNotificationNotSupported, method))
	}
}

func unsupported(rpcErr *errors.RpcError, method string) jsonrpc.HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		log.Debug("unsupported method", "method", method)
		return nil, rpcErr.WithMessagef("%s is not supported by this agent", method)
	}
}

func (srv *AgentServer) handleSendMessage(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.MessageSendParams

	if rpcErr := jsonrpc.DecodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}

	if params.Configuration == nil && srv.cfg.HistoryLength > 0 {
		params.Configuration = &a2a.MessageSendConfiguration{
			HistoryLength: utils.Ptr(srv.cfg.HistoryLength),
		}
	}

	return srv.manager.SendMessage(ctx, params)
}

func (srv *AgentServer) handleGetTask(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskQueryParams

	if rpcErr := jsonrpc.DecodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}

	return srv.manager.GetTask(ctx, params)
}

func (srv *AgentServer) handleCancelTask(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskIDParams

	if rpcErr := jsonrpc.DecodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}

	return srv.manager.CancelTask(ctx, params)
}

/*
Start listens on the configured host and port until ctx is done.
*/
func (srv *AgentServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", srv.cfg.Host, srv.cfg.Port)
	log.Info("starting agent server", "addr", addr, "url", srv.card.URL)

	return srv.app.Listen(addr, fiber.ListenConfig{
		DisableStartupMessage: true,
		GracefulContext:       ctx,
	})
}

func (srv *AgentServer) Shutdown(ctx context.Context) error {
	return srv.app.ShutdownWithContext(ctx)
}
