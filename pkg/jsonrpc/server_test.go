package jsonrpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
)

func newEchoServer() *RPCServer {
	srv := NewRPCServer()

	srv.Register("echo", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		var v string

		if rpcErr := DecodeParams(params, &v); rpcErr != nil {
			return nil, rpcErr
		}

		return v, nil
	})

	srv.Register("fail", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		return nil, &errors.RpcError{Code: 123, Message: "boom"}
	})

	return srv
}

func serve(srv *RPCServer) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(srv.Handle(r.Context(), body))
	}))
}

func TestJSONRPCServerClientRoundTrip(t *testing.T) {
	ts := serve(newEchoServer())
	defer ts.Close()

	client := NewRPCClient(ts.URL)

	resp, err := client.Call(context.Background(), "echo", "hello")
	require.NoError(t, err)
	require.Nil(t, resp.Error)

	var out string
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "hello", out)
	assert.Equal(t, "1", string(resp.ID))

	resp, err = client.Call(context.Background(), "does.not.exist", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errors.ErrMethodNotFound.Code, resp.Error.Code)
	assert.Equal(t, "2", string(resp.ID))
}

func TestJSONRPCServerHandlerReturnsError(t *testing.T) {
	ts := serve(newEchoServer())
	defer ts.Close()

	resp, err := NewRPCClient(ts.URL).Call(context.Background(), "fail", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "boom", resp.Error.Message)
	assert.Equal(t, "RPC error 123: boom", resp.Error.Error())
}

func TestHandle(t *testing.T) {
	srv := newEchoServer()

	var observed []string

	srv.Observe(func(method string, rpcErr *errors.RpcError) {
		observed = append(observed, method)
	})

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantID   string
	}{
		{"empty body", ``, errors.ErrInvalidRequest.Code, "null"},
		{"malformed json", `{"jsonrpc":`, errors.ErrParseError.Code, "null"},
		{"missing version", `{"id":1,"method":"echo","params":"x"}`, errors.ErrInvalidRequest.Code, "1"},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"echo"}`, errors.ErrInvalidRequest.Code, "1"},
		{"missing method", `{"jsonrpc":"2.0","id":"a"}`, errors.ErrInvalidRequest.Code, `"a"`},
		{"not an object", `42`, errors.ErrInvalidRequest.Code, "null"},
		{"unknown method", `{"jsonrpc":"2.0","id":7,"method":"nope"}`, errors.ErrMethodNotFound.Code, "7"},
		{"bad params", `{"jsonrpc":"2.0","id":8,"method":"echo","params":{}}`, errors.ErrInvalidRequest.Code, "8"},
		{"missing params", `{"jsonrpc":"2.0","id":9,"method":"echo"}`, errors.ErrInvalidRequest.Code, "9"},
		{"success", `{"jsonrpc":"2.0","id":10,"method":"echo","params":"hi"}`, 0, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := srv.Handle(context.Background(), []byte(tt.body))

			resp, ok := out.(RPCResponse)
			require.True(t, ok)
			assert.Equal(t, Version, resp.JSONRPC)
			assert.Equal(t, tt.wantID, string(resp.ID))

			if tt.wantCode == 0 {
				assert.Nil(t, resp.Error)
				assert.Equal(t, `"hi"`, string(resp.Result))
				return
			}

			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	assert.Contains(t, observed, "nope")
	assert.Contains(t, observed, "echo")
}

func TestHandleBatchAndNotifications(t *testing.T) {
	srv := newEchoServer()

	assert.Nil(t, srv.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"echo","params":"x"}`)))

	out := srv.Handle(context.Background(), []byte(`[
		{"jsonrpc":"2.0","id":1,"method":"echo","params":"a"},
		{"jsonrpc":"2.0","method":"echo","params":"b"},
		{"jsonrpc":"2.0","id":2,"method":"fail"}
	]`))

	batch, ok := out.([]RPCResponse)
	require.True(t, ok)
	require.Len(t, batch, 2)
	assert.Equal(t, `"a"`, string(batch[0].Result))
	assert.Equal(t, 123, batch[1].Error.Code)

	empty, ok := srv.Handle(context.Background(), []byte(`[]`)).(RPCResponse)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidRequest.Code, empty.Error.Code)
}
