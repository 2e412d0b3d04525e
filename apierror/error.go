package apierror

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Error is a JSON-RPC error carrying the adapter's own error code, matching
// the go-ethereum rpc.Error contract (ErrorCode() int) so it can be returned
// directly from a namespace method and surface the right code to the client.
type Error struct {
	code Code
	msg  string
	data any
}

func (e *Error) Error() string  { return e.msg }
func (e *Error) ErrorCode() int { return e.code.Int() }
func (e *Error) ErrorData() any { return e.data }

func newErr(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// UnknownBlock reports a block that is not in the index and maps to
// ResourceNotFound. A failed latest-block lookup is UnknownBlockNumber.
func UnknownBlock(hashOrNumber string) *Error {
	return newErr(CodeResourceNotFound, "unknown block %s", hashOrNumber)
}

func UnknownBlockNumber() *Error {
	return newErr(CodeResourceNotFound, "unable to determine latest block number")
}

// TransactionNotFound is used by the tracing engine only.
func TransactionNotFound(hash string) *Error {
	return newErr(CodeResourceNotFound, "transaction %s not found", hash)
}

func InvalidBlockRange() *Error {
	return newErr(CodeInvalidParams, "invalid block range: from > to")
}

// Unsupported marks a feature intentionally not implemented.
func Unsupported(feature string) *Error {
	return newErr(CodeInternalError, "unsupported: %s", feature)
}

// EthereumDataFormat covers RLP/primitive-shape conversion failures.
func EthereumDataFormat(err error) *Error {
	return newErr(CodeInvalidParams, "invalid ethereum data format: %s", err)
}

func SignatureRecoveryError(err error) *Error {
	return newErr(CodeInvalidParams, "signature recovery failed: %s", err)
}

func SignatureSignError(err error) *Error {
	return newErr(CodeInvalidParams, "signing failed: %s", err)
}

func MissingSignature() *Error {
	return newErr(CodeInvalidParams, "transaction is missing a signature")
}

func InvalidChainID(got, want uint64) *Error {
	return newErr(CodeInvalidInput, "invalid chain id: got %d, want %d", got, want)
}

func GasOverflow() *Error {
	return newErr(CodeTransactionRejected, "gas value overflows u128")
}

func TracingFailed(err error) *Error {
	return newErr(CodeInternalError, "transaction replay failed: %s", err)
}

func ExpectedFullTransactions() *Error {
	return newErr(CodeInternalError, "block had hash-only body where full transactions were required")
}

// Execution wraps an EvmError parsed from an EVM-kernel revert reason; it
// always maps to the execution-error code (3), matching a standard Ethereum
// JSON-RPC "execution reverted" response.
func Execution(evmErr error) *Error {
	return &Error{code: CodeExecutionError, msg: evmErr.Error()}
}

// L2 provider error categories, mirroring the Starknet-style provider error
// surface the L2 client can return.
func L2NotFound(what string) *Error {
	return newErr(CodeResourceNotFound, "%s not found on L2", what)
}

func L2ContractError(err error) *Error {
	return &Error{code: CodeExecutionError, msg: err.Error()}
}

func L2InvalidRequest(err error) *Error {
	return newErr(CodeInvalidInput, "invalid L2 request: %s", err)
}

func L2SubmissionFailed(err error) *Error {
	return newErr(CodeTransactionRejected, "failed to receive transaction: %s", err)
}

func DatabaseError(err error) *Error {
	return newErr(CodeInternalError, "index store error: %s", err)
}

func MethodNotSupported(method string) *Error {
	return newErr(CodeMethodNotSupported, "method %s is not supported", method)
}

// TransactionRejected covers mempool admission failures: unsupported
// type, oversized input, gas-limit/fee-cap/chain-id mismatch, insufficient
// intrinsic gas, contract-code sender, stale nonce, insufficient balance.
func TransactionRejected(reason string) *Error {
	return newErr(CodeTransactionRejected, "transaction rejected: %s", reason)
}

// Wrap adds module context to an error without changing its JSON-RPC shape.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorsmod.Wrapf(err, format, args...)
}
