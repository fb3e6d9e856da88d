/*
Package config turns the viper configuration into immutable values that are
passed explicitly to every component.
*/
package config

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Invoker configures the A2A client side.
type Invoker struct {
	BaseURL       string
	Path          string
	RPCURL        string
	CardURL       string
	Token         string
	CardTimeout   time.Duration
	InvokeTimeout time.Duration
	DefaultPrompt string
}

// LLM selects and authenticates the language model.
type LLM struct {
	Provider string
	Model    string
	APIBase  string
	APIKey   string
}

// OIDC configures bearer token verification on the agent server.
type OIDC struct {
	Enabled  bool
	Issuer   string
	Audience string
	JWKSURL  string
}

// Agent configures the calculator agent and its A2A server.
type Agent struct {
	Name          string
	Description   string
	Version       string
	BaseURL       string
	Path          string
	Host          string
	Port          int
	MCPServerURL  string
	MCPToken      string
	HistoryLength int
	MaxSteps      int
	LLM           LLM
	OIDC          OIDC
}

// Tools configures the MCP calculator tool server and the generic MCP client.
type Tools struct {
	Name          string
	Version       string
	Host          string
	Port          int
	Path          string
	ClientURL     string
	ClientToken   string
	ClientTimeout time.Duration
}

// Config is the complete, read-once configuration.
type Config struct {
	Invoker Invoker
	Agent   Agent
	Tools   Tools
}

/*
envBindings maps config keys onto the environment variable names operators
already use. The first variable listed wins when several are set.
*/
var envBindings = map[string][]string{
	"invoker.base_url":     {"AGENT_BASE_URL"},
	"invoker.path":         {"AGENT_PATH"},
	"invoker.rpc_url":      {"AGENT_RPC_URL"},
	"invoker.card_url":     {"AGENT_CARD_URL"},
	"invoker.token":        {"MCP_TOKEN"},
	"agent.base_url":       {"A2A_BASE_URL"},
	"agent.host":           {"A2A_HOST"},
	"agent.port":           {"A2A_PORT"},
	"agent.mcp_server_url": {"MCP_SERVER_URL"},
	"agent.mcp_token":      {"MCP_TOKEN"},
	"agent.llm.provider":   {"LLM_PROVIDER"},
	"agent.llm.model":      {"LLM_MODEL"},
	"agent.llm.api_base":   {"LLM_API_BASE", "LLM_BASE_URL"},
	"agent.llm.api_key":    {"API_KEY"},
	"agent.llm.compat_key": {"LLM_API_KEY", "OPENAI_API_KEY"},
	"agent.llm.gemini_key": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"agent.oidc.enabled":   {"OIDC_ENABLED"},
	"agent.oidc.issuer":    {"OIDC_ISSUER"},
	"agent.oidc.audience":  {"OIDC_AUDIENCE"},
	"agent.oidc.jwks_url":  {"OIDC_JWKS_URL"},
	"tools.host":           {"MCP_HOST"},
	"tools.port":           {"MCP_PORT"},
	"tools.client.url":     {"MCP_BASE_URL"},
	"tools.client.token":   {"MCP_TOKEN"},
}

/*
BindEnv registers the environment bindings on v. It must run before Load.
*/
func BindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, names := range envBindings {
		args := append([]string{key}, names...)

		if err := v.BindEnv(args...); err != nil {
			log.Warn("failed to bind env", "key", key, "error", err)
		}
	}

	setDefaults(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("invoker.base_url", "http://localhost:8001")
	v.SetDefault("invoker.path", "/calculator")
	v.SetDefault("invoker.card_timeout", 10*time.Second)
	v.SetDefault("invoker.invoke_timeout", 60*time.Second)
	v.SetDefault("invoker.default_prompt", "Calculate 10 + 20")

	v.SetDefault("agent.name", "Calculator Agent")
	v.SetDefault("agent.description", "An intelligent agent that performs mathematical operations using an MCP calculator server.")
	v.SetDefault("agent.version", "0.1.0")
	v.SetDefault("agent.base_url", "http://localhost:8001")
	v.SetDefault("agent.path", "/calculator")
	v.SetDefault("agent.host", "0.0.0.0")
	v.SetDefault("agent.port", 8001)
	v.SetDefault("agent.mcp_server_url", "http://localhost:8000/mcp/")
	v.SetDefault("agent.max_steps", 8)
	v.SetDefault("agent.llm.provider", "gemini")
	v.SetDefault("agent.llm.model", "gemini-pro")

	v.SetDefault("tools.name", "mcp-calculator")
	v.SetDefault("tools.version", "0.1.0")
	v.SetDefault("tools.host", "0.0.0.0")
	v.SetDefault("tools.port", 8000)
	v.SetDefault("tools.path", "/mcp/")
	v.SetDefault("tools.client.url", "http://localhost:8000/mcp")
	v.SetDefault("tools.client.timeout", 30*time.Second)
}

/*
Load reads v once and returns the immutable configuration.
*/
func Load(v *viper.Viper) Config {
	return Config{
		Invoker: Invoker{
			BaseURL:       v.GetString("invoker.base_url"),
			Path:          v.GetString("invoker.path"),
			RPCURL:        v.GetString("invoker.rpc_url"),
			CardURL:       v.GetString("invoker.card_url"),
			Token:         v.GetString("invoker.token"),
			CardTimeout:   v.GetDuration("invoker.card_timeout"),
			InvokeTimeout: v.GetDuration("invoker.invoke_timeout"),
			DefaultPrompt: v.GetString("invoker.default_prompt"),
		},
		Agent: Agent{
			Name:          v.GetString("agent.name"),
			Description:   v.GetString("agent.description"),
			Version:       v.GetString("agent.version"),
			BaseURL:       v.GetString("agent.base_url"),
			Path:          v.GetString("agent.path"),
			Host:          v.GetString("agent.host"),
			Port:          v.GetInt("agent.port"),
			MCPServerURL:  v.GetString("agent.mcp_server_url"),
			MCPToken:      v.GetString("agent.mcp_token"),
			HistoryLength: v.GetInt("agent.history_length"),
			MaxSteps:      v.GetInt("agent.max_steps"),
			LLM:           loadLLM(v),
			OIDC: OIDC{
				Enabled:  v.GetBool("agent.oidc.enabled"),
				Issuer:   v.GetString("agent.oidc.issuer"),
				Audience: v.GetString("agent.oidc.audience"),
				JWKSURL:  v.GetString("agent.oidc.jwks_url"),
			},
		},
		Tools: Tools{
			Name:          v.GetString("tools.name"),
			Version:       v.GetString("tools.version"),
			Host:          v.GetString("tools.host"),
			Port:          v.GetInt("tools.port"),
			Path:          v.GetString("tools.path"),
			ClientURL:     v.GetString("tools.client.url"),
			ClientToken:   v.GetString("tools.client.token"),
			ClientTimeout: v.GetDuration("tools.client.timeout"),
		},
	}
}

/*
loadLLM resolves the API key for the selected provider family.
OpenAI-compatible endpoints prefer LLM_API_KEY/OPENAI_API_KEY and fall back
to API_KEY; Gemini prefers API_KEY and falls back to GEMINI_API_KEY or
GOOGLE_API_KEY.
*/
func loadLLM(v *viper.Viper) LLM {
	llm := LLM{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("agent.llm.provider"))),
		Model:    strings.TrimSpace(v.GetString("agent.llm.model")),
		APIBase:  strings.TrimSpace(v.GetString("agent.llm.api_base")),
	}

	apiKey := v.GetString("agent.llm.api_key")

	if llm.UsesOpenAICompatible() {
		llm.APIKey = v.GetString("agent.llm.compat_key")

		if llm.APIKey == "" && apiKey != "" {
			log.Warn("LLM_API_KEY not set, falling back to API_KEY for the OpenAI-compatible endpoint")
			llm.APIKey = apiKey
		}

		return llm
	}

	llm.APIKey = apiKey

	if llm.APIKey == "" {
		llm.APIKey = v.GetString("agent.llm.gemini_key")
	}

	if llm.APIKey == "" {
		log.Warn("no API key configured for Gemini, requests will likely fail")
	}

	return llm
}

/*
UsesOpenAICompatible decides between the Gemini client and an
OpenAI-compatible endpoint (LiteLLM, Ollama, vLLM, ...).
*/
func (llm LLM) UsesOpenAICompatible() bool {
	switch llm.Provider {
	case "litellm", "local", "ollama", "openai":
		return true
	case "gemini", "google":
		return false
	}

	return llm.APIBase != "" || strings.Contains(llm.Model, "/")
}
