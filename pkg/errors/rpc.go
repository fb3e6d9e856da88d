package errors

import (
	"fmt"
)

/*
RpcError represents a JSON-RPC error response.
*/
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for RpcError.
*/
func (e *RpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// JSON-RPC reserved codes.
var (
	ErrParseError     = &RpcError{Code: -32700, Message: "Parse error"}
	ErrInvalidRequest = &RpcError{Code: -32600, Message: "Invalid Request"}
	ErrMethodNotFound = &RpcError{Code: -32601, Message: "Method not found"}
	ErrInvalidParams  = &RpcError{Code: -32602, Message: "Invalid params"}
	ErrInternal       = &RpcError{Code: -32603, Message: "Internal error"}
)

// A2A codes.
var (
	ErrTaskNotFound                 = &RpcError{Code: -32001, Message: "Task not found"}
	ErrTaskNotCancelable            = &RpcError{Code: -32002, Message: "Task cannot be canceled"}
	ErrPushNotificationNotSupported = &RpcError{Code: -32003, Message: "Push Notification is not supported"}
	ErrUnsupportedOperation         = &RpcError{Code: -32004, Message: "This operation is not supported"}
)

// WithMessagef creates a *copy* of an RpcError with a formatted message.
// It does not modify the original error variable.
func (e *RpcError) WithMessagef(format string, args ...any) *RpcError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// Is matches any RpcError with the same code.
func (e *RpcError) Is(target error) bool {
	other, ok := target.(*RpcError)
	return ok && other.Code == e.Code
}
