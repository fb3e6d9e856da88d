package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-calculator/pkg/errors"
)

/*
HandlerFunc processes the raw params field and returns a result or a
*errors.RpcError. Returning (nil, nil) is treated as a null result.
*/
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError)

/*
RPCServer multiplexes JSON-RPC method names to handler functions. It is
transport agnostic: Handle takes a raw body and returns what to write back.
*/
type RPCServer struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	observer func(method string, rpcErr *errors.RpcError)
}

func NewRPCServer() *RPCServer {
	return &RPCServer{
		handlers: make(map[string]HandlerFunc),
	}
}

func (s *RPCServer) Register(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

/*
Observe installs a callback invoked once per handled request with its method
and error, if any.
*/
func (s *RPCServer) Observe(fn func(method string, rpcErr *errors.RpcError)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

/*
Handle processes a single request or a batch. The returned value is either
an RPCResponse, a []RPCResponse, or nil when nothing must be written back
because every request was a notification.
*/
func (s *RPCServer) Handle(ctx context.Context, body []byte) any {
	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		return NewErrorResponse(nil, errors.ErrInvalidRequest)
	}

	if body[0] == '[' {
		var batch []json.RawMessage

		if err := json.Unmarshal(body, &batch); err != nil {
			return NewErrorResponse(nil, errors.ErrParseError)
		}

		if len(batch) == 0 {
			return NewErrorResponse(nil, errors.ErrInvalidRequest)
		}

		responses := make([]RPCResponse, 0, len(batch))

		for _, raw := range batch {
			if resp, ok := s.handleOne(ctx, raw); ok {
				responses = append(responses, resp)
			}
		}

		if len(responses) == 0 {
			return nil
		}

		return responses
	}

	if !json.Valid(body) {
		return NewErrorResponse(nil, errors.ErrParseError)
	}

	resp, ok := s.handleOne(ctx, body)

	if !ok {
		return nil
	}

	return resp
}

func (s *RPCServer) handleOne(ctx context.Context, raw json.RawMessage) (RPCResponse, bool) {
	var req RPCRequest

	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(nil, errors.ErrInvalidRequest.WithMessagef("invalid request: %v", err)), true
	}

	if req.JSONRPC != Version || req.Method == "" {
		return NewErrorResponse(req.ID, errors.ErrInvalidRequest), true
	}

	s.mu.RLock()
	h, ok := s.handlers[req.Method]
	observer := s.observer
	s.mu.RUnlock()

	var (
		result any
		rpcErr *errors.RpcError
	)

	if ok {
		result, rpcErr = h(ctx, req.Params)
	} else {
		rpcErr = errors.ErrMethodNotFound.WithMessagef("Method not found: %s", req.Method)
	}

	if observer != nil {
		observer(req.Method, rpcErr)
	}

	if rpcErr != nil {
		log.Debug("rpc request failed", "method", req.Method, "code", rpcErr.Code, "message", rpcErr.Message)
	}

	if req.IsNotification() {
		return RPCResponse{}, false
	}

	if rpcErr != nil {
		return NewErrorResponse(req.ID, rpcErr), true
	}

	return NewResultResponse(req.ID, result), true
}

/*
DecodeParams unmarshals params into out. Missing params, or params of the
wrong shape, make the request itself invalid.
*/
func DecodeParams(params json.RawMessage, out any) *errors.RpcError {
	if len(params) == 0 {
		return errors.ErrInvalidRequest.WithMessagef("missing params")
	}

	if err := json.Unmarshal(params, out); err != nil {
		log.Error("failed to unmarshal params", "error", err, "params", string(params))
		return errors.ErrInvalidRequest.WithMessagef("invalid params: %v", err)
	}

	return nil
}
