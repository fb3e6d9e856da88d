package tools

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunDemo(t *testing.T) {
	Convey("Given a calculator MCP server", t, func() {
		srv := httptest.NewServer(server.NewStreamableHTTPServer(newCalculatorServer(), server.WithStateLess(true)))
		defer srv.Close()

		var out strings.Builder

		Convey("The demo runs every step and catches division by zero", func() {
			err := RunDemo(context.Background(), NewRPCToolClient(srv.URL, "", time.Second), &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "--- Testing Add (5 + 3) ---\nResult: 8\n")
			So(out.String(), ShouldContainSubstring, "Result: 6\n")
			So(out.String(), ShouldContainSubstring, "Result: 42\n")
			So(out.String(), ShouldContainSubstring, "Result: 4\n")
			So(out.String(), ShouldContainSubstring, "Caught expected error: RPC Error: Cannot divide by zero")
		})
	})

	Convey("Given no server at all", t, func() {
		var out strings.Builder

		err := RunDemo(context.Background(), NewRPCToolClient("http://127.0.0.1:1", "", time.Second), &out)

		So(err, ShouldNotBeNil)
		So(out.String(), ShouldEqual, "--- Testing Add (5 + 3) ---\n")
	})
}
