package jsonrpc

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClientHeaders(t *testing.T) {
	var auth, accept, custom string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		custom = r.Header.Get("X-Trace")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}))
	defer ts.Close()

	client := NewRPCClient(ts.URL, WithBearerToken("tok"), WithHeaders(map[string]string{"X-Trace": "abc"}))

	_, err := client.Call(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "application/json, text/event-stream", accept)
	assert.Equal(t, "abc", custom)

	_, err = NewRPCClient(ts.URL, WithBearerToken("")).Call(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestRPCClientEventStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		_, _ = io.WriteString(w, "event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":1,\"result\":\"ok\"}\n\n")
	}))
	defer ts.Close()

	resp, err := NewRPCClient(ts.URL).Call(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(resp.Result))
}

func TestRPCClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		check   func(t *testing.T, err error)
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var statusErr *HTTPStatusError
				require.True(t, stderrors.As(err, &statusErr))
				assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
				assert.Contains(t, err.Error(), "HTTP 404 Not Found")
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "<html>")
			},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "failed to decode response")
			},
		},
		{
			name: "empty event stream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, ": ping\n\n")
			},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "no data")
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			timeout: 20 * time.Millisecond,
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			var opts []ClientOption

			if tt.timeout > 0 {
				opts = append(opts, WithTimeout(tt.timeout))
			}

			_, err := NewRPCClient(ts.URL, opts...).Call(context.Background(), "ping", nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
