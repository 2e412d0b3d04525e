// Package apierror defines the JSON-RPC error taxonomy shared by every
// namespace bound in package rpc.
package apierror

// Code is a JSON-RPC error code in the adapter's own taxonomy.
type Code int

const (
	CodeUnknown             Code = 0
	CodeExecutionError      Code = 3
	CodeParseError          Code = -32700
	CodeInvalidRequest      Code = -32600
	CodeMethodNotFound      Code = -32601
	CodeInvalidParams       Code = -32602
	CodeInternalError       Code = -32603
	CodeInvalidInput        Code = -32000
	CodeResourceNotFound    Code = -32001
	CodeResourceUnavailable Code = -32002
	CodeTransactionRejected Code = -32003
	CodeMethodNotSupported  Code = -32004
	CodeRequestLimitExceed  Code = -32005
	CodeJSONRPCVersionUnsup Code = -32006
)

// Int returns the code as a plain int; (*Error).ErrorCode uses it to
// implement go-ethereum/rpc.Error, so namespace handlers can return *Error
// directly and have the JSON-RPC code surface to the client.
func (c Code) Int() int { return int(c) }
