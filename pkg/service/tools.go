package service

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/tools"
	"github.com/theapemachine/a2a-calculator/pkg/utils"
)

/*
ToolServer serves the calculator tools over MCP streamable HTTP. It runs
stateless: every POST is answered with a plain JSON response and no session
is kept between calls.
*/
type ToolServer struct {
	app *fiber.App
	cfg config.Tools
	mcp *server.MCPServer
}

func NewToolServer(cfg config.Tools) *ToolServer {
	hooks := &server.Hooks{}

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest) {
		log.Info("tool call", "tool", message.Params.Name, "args", message.Params.Arguments)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		log.Error("mcp request failed", "method", method, "error", err)
	})

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithHooks(hooks),
	)

	tools.RegisterCalculatorTools(mcpServer)

	srv := &ToolServer{
		app: fiber.New(fiber.Config{
			AppName:      cfg.Name,
			ServerHeader: "MCP-Calculator",
		}),
		cfg: cfg,
		mcp: mcpServer,
	}

	srv.routes()

	return srv
}

func (srv *ToolServer) App() *fiber.App {
	return srv.app
}

func (srv *ToolServer) routes() {
	path := utils.TrimTrailingSlash(srv.cfg.Path)

	if path == "" {
		path = "/mcp"
	}

	srv.app.Use(logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == healthcheck.LivenessEndpoint
		},
	}))

	srv.app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	srv.app.Get("/health", handleHealth)
	srv.app.Get("/metrics", adaptor.HTTPHandler(metricsHandler()))

	srv.app.All(path, adaptor.HTTPHandler(
		server.NewStreamableHTTPServer(srv.mcp, server.WithStateLess(true)),
	))
}

func (srv *ToolServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", srv.cfg.Host, srv.cfg.Port)
	log.Info("starting MCP calculator server", "addr", addr, "path", srv.cfg.Path)

	return srv.app.Listen(addr, fiber.ListenConfig{
		DisableStartupMessage: true,
		GracefulContext:       ctx,
	})
}

func (srv *ToolServer) Shutdown(ctx context.Context) error {
	return srv.app.ShutdownWithContext(ctx)
}
