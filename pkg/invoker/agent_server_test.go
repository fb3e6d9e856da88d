package invoker

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/ai"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/service"
	"github.com/theapemachine/a2a-calculator/pkg/stores"
)

type fixedAnswer string

func (answer fixedAnswer) Run(ctx context.Context, prompt string) (string, error) {
	return string(answer), nil
}

/*
startAgentServer serves a calculator agent that always answers "42" on a free
local port and returns its base url.
*/
func startAgentServer(t *testing.T) (string, *ai.TaskManager) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	baseURL := "http://" + ln.Addr().String()

	manager, err := ai.NewTaskManager(
		ai.WithTaskStore(stores.NewInMemoryTaskStore()),
		ai.WithRunner(fixedAnswer("42")),
	)

	if err != nil {
		t.Fatalf("failed to create task manager: %v", err)
	}

	srv := service.NewAgentServer(config.Agent{
		Name:    "Calculator Agent",
		Version: "0.1.0",
		BaseURL: baseURL + "/",
		Path:    "/calculator",
	}, manager)

	go func() {
		_ = srv.App().Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return baseURL, manager
}

func TestInvokerAgainstAgentServer(t *testing.T) {
	Convey("Given a calculator agent server on a real listener", t, func() {
		baseURL, manager := startAgentServer(t)

		invoker := NewInvoker(config.Invoker{
			BaseURL:       baseURL,
			Path:          "/calculator",
			CardTimeout:   5 * time.Second,
			InvokeTimeout: 5 * time.Second,
		})

		Convey("The card resolves the RPC endpoint", func() {
			rpcURL, cardErr := invoker.Discover(context.Background())
			So(cardErr, ShouldBeEmpty)
			So(rpcURL, ShouldEqual, baseURL+"/calculator/")
		})

		Convey("A prompt comes back answered", func() {
			So(invoker.Run(context.Background(), "Calculate 6*7"), ShouldEqual, "42")
		})

		Convey("A finished task can be read back but not canceled", func() {
			task, rpcErr := manager.SendMessage(context.Background(), a2a.NewSendParams("Calculate 6*7"))
			So(rpcErr, ShouldBeNil)

			fetched, errStr := invoker.GetTask(context.Background(), task.ID, nil)
			So(errStr, ShouldBeEmpty)
			So(fetched.Status.State, ShouldEqual, a2a.TaskStateCompleted)
			So(ExtractTaskText(fetched), ShouldEqual, "42")
			So(fetched.History, ShouldHaveLength, 2)

			_, errStr = invoker.CancelTask(context.Background(), task.ID)
			So(errStr, ShouldStartWith, InvokeErrorPrefix)
			So(errStr, ShouldContainSubstring, "cannot be canceled")

			_, errStr = invoker.GetTask(context.Background(), "missing", nil)
			So(errStr, ShouldStartWith, InvokeErrorPrefix)
		})
	})
}
