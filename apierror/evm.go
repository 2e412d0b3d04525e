package apierror

import "strings"

// EvmErrorKind is the taxonomy parsed from an EVM-kernel revert reason.
type EvmErrorKind int

const (
	EvmOther EvmErrorKind = iota
	EvmValidationError
	EvmStateModificationError
	EvmUnknownOpcode
	EvmInvalidJumpDest
	EvmNotKakarotEoaCaller
	EvmViewFunctionError
	EvmStackOverflow
	EvmStackUnderflow
	EvmOutOfBoundsRead
	EvmUnknownPrecompile
	EvmNotImplementedPrecompile
	EvmPrecompileInputError
	EvmPrecompileFlagError
	EvmBalanceError
	EvmAddressCollision
	EvmOutOfGas
)

// EvmError is a parsed EVM-kernel revert reason, matching the Rust source's
// EvmError enum (kind plus, for the two precompile variants, the precompile
// name extracted from the message).
type EvmError struct {
	Kind EvmErrorKind
	Name string // only set for UnknownPrecompile / NotImplementedPrecompile
	raw  string
}

func (e *EvmError) Error() string {
	switch e.Kind {
	case EvmValidationError:
		return "eth validation failed"
	case EvmStateModificationError:
		return "state modification error"
	case EvmUnknownOpcode:
		return "unknown opcode"
	case EvmInvalidJumpDest:
		return "invalid jump destination"
	case EvmNotKakarotEoaCaller:
		return "caller contract is not a Kakarot account"
	case EvmViewFunctionError:
		return "entrypoint should only be called in view mode"
	case EvmStackOverflow:
		return "stack overflow"
	case EvmStackUnderflow:
		return "stack underflow"
	case EvmOutOfBoundsRead:
		return "out of bounds read"
	case EvmUnknownPrecompile:
		return "unknown precompile: " + e.Name
	case EvmNotImplementedPrecompile:
		return "precompile not implemented: " + e.Name
	case EvmPrecompileInputError:
		return "precompile input error"
	case EvmPrecompileFlagError:
		return "precompile flag error"
	case EvmBalanceError:
		return "transfer amount exceeds balance"
	case EvmAddressCollision:
		return "address collision"
	case EvmOutOfGas:
		return "out of gas"
	default:
		return e.raw
	}
}

// ParseEvmError parses a revert-reason string emitted by the EVM kernel, after
// trimming the "Kakarot: " / "Precompile: " prefixes it is conventionally
// wrapped in, and matching it against the fixed taxonomy. Anything that does
// not match becomes EvmOther, preserving the original message.
func ParseEvmError(reason string) *EvmError {
	trimmed := strings.TrimPrefix(reason, "Kakarot: ")
	trimmed = strings.TrimPrefix(trimmed, "Precompile: ")

	switch {
	case trimmed == "eth validation failed":
		return &EvmError{Kind: EvmValidationError, raw: reason}
	case trimmed == "StateModificationError":
		return &EvmError{Kind: EvmStateModificationError, raw: reason}
	case trimmed == "UnknownOpcode":
		return &EvmError{Kind: EvmUnknownOpcode, raw: reason}
	case trimmed == "invalidJumpDestError":
		return &EvmError{Kind: EvmInvalidJumpDest, raw: reason}
	case trimmed == "caller contract is not a Kakarot account":
		return &EvmError{Kind: EvmNotKakarotEoaCaller, raw: reason}
	case trimmed == "entrypoint should only be called in view mode":
		return &EvmError{Kind: EvmViewFunctionError, raw: reason}
	case trimmed == "StackOverflow":
		return &EvmError{Kind: EvmStackOverflow, raw: reason}
	case trimmed == "StackUnderflow":
		return &EvmError{Kind: EvmStackUnderflow, raw: reason}
	case trimmed == "OutOfBoundsRead":
		return &EvmError{Kind: EvmOutOfBoundsRead, raw: reason}
	case strings.Contains(trimmed, "UnknownPrecompile"):
		return &EvmError{Kind: EvmUnknownPrecompile, Name: strings.TrimSpace(strings.TrimPrefix(trimmed, "UnknownPrecompile")), raw: reason}
	case strings.Contains(trimmed, "NotImplementedPrecompile"):
		return &EvmError{Kind: EvmNotImplementedPrecompile, Name: strings.TrimSpace(strings.TrimPrefix(trimmed, "NotImplementedPrecompile")), raw: reason}
	case trimmed == "wrong input_length":
		return &EvmError{Kind: EvmPrecompileInputError, raw: reason}
	case trimmed == "flag error":
		return &EvmError{Kind: EvmPrecompileFlagError, raw: reason}
	case trimmed == "transfer amount exceeds balance":
		return &EvmError{Kind: EvmBalanceError, raw: reason}
	case trimmed == "AddressCollision":
		return &EvmError{Kind: EvmAddressCollision, raw: reason}
	case strings.Contains(trimmed, "outOfGas"):
		return &EvmError{Kind: EvmOutOfGas, raw: reason}
	default:
		return &EvmError{Kind: EvmOther, raw: reason}
	}
}
