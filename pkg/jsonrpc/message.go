package jsonrpc

import (
	"encoding/json"

	"github.com/theapemachine/a2a-calculator/pkg/errors"
)

// Version is the only JSON-RPC version spoken.
const Version = "2.0"

type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"` // accepts string | number | null
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

/*
NewRequest builds a request envelope, marshalling params and id.
*/
func NewRequest(id any, method string, params any) (RPCRequest, error) {
	req := RPCRequest{
		JSONRPC: Version,
		Method:  method,
	}

	var err error

	if id != nil {
		if req.ID, err = json.Marshal(id); err != nil {
			return req, err
		}
	}

	if params != nil {
		if req.Params, err = json.Marshal(params); err != nil {
			return req, err
		}
	}

	return req, nil
}

// IsNotification reports whether the request carries no id.
func (req *RPCRequest) IsNotification() bool {
	return len(req.ID) == 0
}

/*
RPCResponse is a response envelope. Result stays raw so that callers decide
how to decode polymorphic results.
*/
type RPCResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *errors.RpcError `json:"error,omitempty"`
}

/*
NewResultResponse marshals result into a success envelope. A marshal failure
turns into an internal error envelope.
*/
func NewResultResponse(id json.RawMessage, result any) RPCResponse {
	raw, err := json.Marshal(result)

	if err != nil {
		return NewErrorResponse(id, errors.ErrInternal.WithMessagef("failed to marshal result: %v", err))
	}

	return RPCResponse{
		JSONRPC: Version,
		ID:      normalizeID(id),
		Result:  raw,
	}
}

func NewErrorResponse(id json.RawMessage, e *errors.RpcError) RPCResponse {
	if e == nil {
		e = errors.ErrInternal
	}

	return RPCResponse{
		JSONRPC: Version,
		ID:      normalizeID(id),
		Error:   e,
	}
}

// Decode unmarshals the raw result into out.
func (resp *RPCResponse) Decode(out any) error {
	if len(resp.Result) == 0 {
		return nil
	}

	return json.Unmarshal(resp.Result, out)
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}

	return id
}
