package jsonrpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/theapemachine/a2a-calculator/pkg/utils"
)

/*
HTTPStatusError is returned when the peer answers with a non-2xx status.
*/
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func NewHTTPStatusError(code int, url string) *HTTPStatusError {
	return &HTTPStatusError{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		URL:        url,
	}
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %s for url %s", e.Status, e.URL)
}

/*
headerInjectingRoundTripper adds custom headers right before the request is
sent, so every caller of the client gets them without touching requests.
*/
type headerInjectingRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (rt headerInjectingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	for key, value := range rt.headers {
		if r.Header.Get(key) == "" {
			r.Header.Set(key, value)
		}
	}

	return rt.base.RoundTrip(r)
}

type RPCClient struct {
	URL    string
	Client *http.Client
	nextID atomic.Int64
}

type ClientOption func(*RPCClient)

// WithTimeout bounds every call made by the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.Client.Timeout = timeout
	}
}

// WithHeaders attaches static headers to every call.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *RPCClient) {
		base := c.Client.Transport

		if base == nil {
			base = http.DefaultTransport
		}

		c.Client.Transport = headerInjectingRoundTripper{base: base, headers: headers}
	}
}

// WithBearerToken sends "Authorization: Bearer <token>" when token is set.
func WithBearerToken(token string) ClientOption {
	return func(c *RPCClient) {
		if token == "" {
			return
		}

		WithHeaders(map[string]string{"Authorization": "Bearer " + token})(c)
	}
}

func NewRPCClient(url string, opts ...ClientOption) *RPCClient {
	client := &RPCClient{
		URL:    url,
		Client: &http.Client{},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

/*
Call posts a request for method and returns the decoded response envelope.
Transport failures and non-2xx statuses are returned as errors; a JSON-RPC
error member is left on the envelope for the caller to inspect. Both plain
JSON and text/event-stream answers are understood.
*/
func (c *RPCClient) Call(ctx context.Context, method string, params any) (*RPCResponse, error) {
	payload, err := NewRequest(c.nextID.Add(1), method, params)

	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)

	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))

	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := c.Client.Do(httpReq)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPStatusError(resp.StatusCode, c.URL)
	}

	raw, err := readPayload(resp)

	if err != nil {
		return nil, err
	}

	var rpcResp RPCResponse

	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &rpcResp, nil
}

func readPayload(resp *http.Response) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	if mediaType != "text/event-stream" {
		return io.ReadAll(resp.Body)
	}

	reader := bufio.NewReader(resp.Body)
	var last string

	for {
		data, err := utils.ReadSSE(reader)

		if data != "" {
			last = data
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(last) == "" {
		return nil, fmt.Errorf("event stream carried no data")
	}

	return []byte(last), nil
}
