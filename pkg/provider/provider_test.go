package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-calculator/pkg/config"
)

var addTool = mcp.NewTool("add",
	mcp.WithDescription("Add two numbers."),
	mcp.WithNumber("a", mcp.Required()),
	mcp.WithNumber("b", mcp.Required()),
)

/*
scriptedServer answers successive POSTs with the given bodies and records
what it received.
*/
type scriptedServer struct {
	mu       sync.Mutex
	replies  []string
	requests []string
	paths    []string
}

func (s *scriptedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, string(body))
	s.paths = append(s.paths, r.URL.Path)

	if len(s.replies) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	reply := s.replies[0]
	s.replies = s.replies[1:]

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, reply)
}

func recordingCaller(calls *[]string, result string, err error) ToolCaller {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		buf, _ := json.Marshal(args)
		*calls = append(*calls, name+" "+string(buf))
		return result, err
	}
}

func TestOpenAIProvider(t *testing.T) {
	Convey("Given an OpenAI-compatible endpoint that asks for a tool", t, func() {
		script := &scriptedServer{replies: []string{
			`{"id":"1","object":"chat.completion","created":0,"model":"m","choices":[{"index":0,
			"finish_reason":"tool_calls","message":{"role":"assistant","content":null,
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"add","arguments":"{\"a\":5,\"b\":3}"}}]}}]}`,
			`{"id":"2","object":"chat.completion","created":0,"model":"m","choices":[{"index":0,
			"finish_reason":"stop","message":{"role":"assistant","content":"5 + 3 = 8"}}]}`,
		}}
		srv := httptest.NewServer(script)
		defer srv.Close()

		prvdr := NewOpenAIProvider(config.LLM{
			Provider: "litellm", Model: "openai/gpt-4o-mini", APIBase: srv.URL + "/v1", APIKey: "sk-test",
		}, 4)

		var calls []string

		Convey("It executes the tool and returns the final text", func() {
			out, err := prvdr.Generate(context.Background(), "be precise", "add 5 and 3",
				[]mcp.Tool{addTool}, recordingCaller(&calls, "8", nil))

			So(err, ShouldBeNil)
			So(out, ShouldEqual, "5 + 3 = 8")
			So(calls, ShouldResemble, []string{`add {"a":5,"b":3}`})
			So(len(script.requests), ShouldEqual, 2)
			So(script.paths[0], ShouldEqual, "/v1/chat/completions")
			So(script.requests[0], ShouldContainSubstring, `"model":"gpt-4o-mini"`)
			So(script.requests[0], ShouldContainSubstring, `"name":"add"`)
			So(script.requests[1], ShouldContainSubstring, `"tool_call_id":"call_1"`)
		})

		Convey("A failing tool is reported back to the model", func() {
			out, err := prvdr.Generate(context.Background(), "", "add 5 and 3",
				[]mcp.Tool{addTool}, recordingCaller(&calls, "", errors.New("boom")))

			So(err, ShouldBeNil)
			So(out, ShouldEqual, "5 + 3 = 8")
			So(script.requests[1], ShouldContainSubstring, "Error executing tool add: boom")
		})
	})

	Convey("Given a model that never stops calling tools", t, func() {
		loop := `{"id":"1","object":"chat.completion","created":0,"model":"m","choices":[{"index":0,
			"finish_reason":"tool_calls","message":{"role":"assistant","content":null,
			"tool_calls":[{"id":"c","type":"function","function":{"name":"add","arguments":"{}"}}]}}]}`
		srv := httptest.NewServer(&scriptedServer{replies: []string{loop, loop}})
		defer srv.Close()

		prvdr := NewOpenAIProvider(config.LLM{Provider: "local", Model: "m", APIBase: srv.URL}, 2)
		var calls []string

		_, err := prvdr.Generate(context.Background(), "", "x", nil, recordingCaller(&calls, "0", nil))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "2 steps")
	})
}

func TestGoogleProvider(t *testing.T) {
	Convey("Given a Gemini endpoint that asks for a tool", t, func() {
		script := &scriptedServer{replies: []string{
			`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"add","args":{"a":5,"b":3}}}]}}]}`,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"The sum is 8."}]},"finishReason":"STOP"}]}`,
		}}
		srv := httptest.NewServer(script)
		defer srv.Close()

		prvdr, err := NewGoogleProvider(context.Background(), config.LLM{
			Provider: "gemini", Model: "gemini-pro", APIKey: "test", APIBase: srv.URL,
		}, 4)
		So(err, ShouldBeNil)

		var calls []string

		out, err := prvdr.Generate(context.Background(), "be precise", "add 5 and 3",
			[]mcp.Tool{addTool}, recordingCaller(&calls, "8", nil))

		So(err, ShouldBeNil)
		So(out, ShouldEqual, "The sum is 8.")
		So(calls, ShouldResemble, []string{`add {"a":5,"b":3}`})
		So(len(script.requests), ShouldEqual, 2)
		So(strings.HasSuffix(script.paths[0], ":generateContent"), ShouldBeTrue)
		So(script.requests[1], ShouldContainSubstring, `"functionResponse"`)
	})
}

func TestModelName(t *testing.T) {
	Convey("Given LiteLLM style model ids", t, func() {
		So(modelName("openai/gpt-4o"), ShouldEqual, "gpt-4o")
		So(modelName("ollama/llama3"), ShouldEqual, "llama3")
		So(modelName("gpt-4o"), ShouldEqual, "gpt-4o")
		So(modelName("meta-llama/Llama-3-8b"), ShouldEqual, "meta-llama/Llama-3-8b")
	})
}

func TestInputSchema(t *testing.T) {
	Convey("Given an MCP tool", t, func() {
		schema := inputSchema(addTool)
		So(schema["type"], ShouldEqual, "object")
		So(schema["required"], ShouldResemble, []string{"a", "b"})
		So(schema["properties"], ShouldContainKey, "a")

		empty := inputSchema(mcp.Tool{Name: "noop"})
		So(empty["properties"], ShouldResemble, map[string]any{})
	})
}

func TestNew(t *testing.T) {
	Convey("Given provider settings", t, func() {
		model, err := New(context.Background(), config.LLM{Provider: "litellm", Model: "openai/x"}, 0)
		So(err, ShouldBeNil)
		_, ok := model.(*OpenAIProvider)
		So(ok, ShouldBeTrue)

		model, err = New(context.Background(), config.LLM{Provider: "gemini", Model: "gemini-pro", APIKey: "k"}, 0)
		So(err, ShouldBeNil)
		google, ok := model.(*GoogleProvider)
		So(ok, ShouldBeTrue)
		So(google.maxSteps, ShouldEqual, DefaultMaxSteps)
	})
}
