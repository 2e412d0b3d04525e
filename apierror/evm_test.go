package apierror

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEvmError(t *testing.T) {
	testCases := []struct {
		reason string
		kind   EvmErrorKind
	}{
		{"Kakarot: eth validation failed", EvmValidationError},
		{"Kakarot: StateModificationError", EvmStateModificationError},
		{"Kakarot: UnknownOpcode", EvmUnknownOpcode},
		{"Kakarot: invalidJumpDestError", EvmInvalidJumpDest},
		{"Kakarot: caller contract is not a Kakarot account", EvmNotKakarotEoaCaller},
		{"Kakarot: entrypoint should only be called in view mode", EvmViewFunctionError},
		{"Kakarot: StackOverflow", EvmStackOverflow},
		{"Kakarot: StackUnderflow", EvmStackUnderflow},
		{"Kakarot: OutOfBoundsRead", EvmOutOfBoundsRead},
		{"Kakarot: UnknownPrecompile 0x42", EvmUnknownPrecompile},
		{"Kakarot: NotImplementedPrecompile 0x0a", EvmNotImplementedPrecompile},
		{"Precompile: wrong input_length", EvmPrecompileInputError},
		{"Precompile: flag error", EvmPrecompileFlagError},
		{"Kakarot: transfer amount exceeds balance", EvmBalanceError},
		{"Kakarot: AddressCollision", EvmAddressCollision},
		{"Kakarot: outOfGas", EvmOutOfGas},
		{"something else entirely", EvmOther},
	}

	for _, tc := range testCases {
		t.Run(tc.reason, func(t *testing.T) {
			got := ParseEvmError(tc.reason)
			require.Equal(t, tc.kind, got.Kind)
			require.NotEmpty(t, got.Error())
		})
	}
}

func TestParseEvmErrorWithoutPrefix(t *testing.T) {
	// The prefixes are trimmed when present but are not required.
	require.Equal(t, EvmStackOverflow, ParseEvmError("StackOverflow").Kind)
}

func TestParseEvmErrorOtherKeepsMessage(t *testing.T) {
	e := ParseEvmError("some opaque revert reason")
	require.Equal(t, EvmOther, e.Kind)
	require.Equal(t, "some opaque revert reason", e.Error())
}
