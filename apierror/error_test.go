package apierror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	testCases := []struct {
		name string
		err  *Error
		code int
	}{
		{"unknown block", UnknownBlock("0xdead"), -32001},
		{"unknown block number", UnknownBlockNumber(), -32001},
		{"transaction not found", TransactionNotFound("0xbeef"), -32001},
		{"invalid block range", InvalidBlockRange(), -32602},
		{"unsupported", Unsupported("withdrawals"), -32603},
		{"ethereum data format", EthereumDataFormat(errors.New("bad rlp")), -32602},
		{"signature recovery", SignatureRecoveryError(errors.New("no point")), -32602},
		{"gas overflow", GasOverflow(), -32003},
		{"tracing failed", TracingFailed(errors.New("oom")), -32603},
		{"execution", Execution(ParseEvmError("Kakarot: outOfGas")), 3},
		{"database", DatabaseError(errors.New("down")), -32603},
		{"method not supported", MethodNotSupported("eth_getProof"), -32004},
		{"transaction rejected", TransactionRejected("stale nonce"), -32003},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, tc.err.ErrorCode())
			require.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestWrapPreservesNil(t *testing.T) {
	require.NoError(t, Wrap(nil, "context"))
	require.Error(t, Wrap(errors.New("boom"), "context %d", 1))
}
