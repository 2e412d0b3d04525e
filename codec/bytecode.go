package codec

import "github.com/holiman/uint256"

// BytesPerFelt is the number of bytecode bytes packed per L2 field element;
// one leading zero byte is left so the packed value stays below the field
// modulus.
const BytesPerFelt = 31

// PackBytecode packs raw EVM bytecode into a dense array of field elements,
// 31 bytes per element, zero-padding the final element.
func PackBytecode(code []byte) []*uint256.Int {
	out := make([]*uint256.Int, 0, (len(code)+BytesPerFelt-1)/BytesPerFelt)
	for i := 0; i < len(code); i += BytesPerFelt {
		end := i + BytesPerFelt
		if end > len(code) {
			end = len(code)
		}
		chunk := make([]byte, BytesPerFelt)
		copy(chunk, code[i:end])
		out = append(out, new(uint256.Int).SetBytes(chunk))
	}
	return out
}

// UnpackBytecode reverses PackBytecode given the exact byte length recorded
// alongside the packed array (bytecode_len in the deployed account state).
func UnpackBytecode(felts []*uint256.Int, length int) []byte {
	out := make([]byte, 0, length)
	for _, f := range felts {
		b := f.Bytes()
		padded := make([]byte, BytesPerFelt)
		copy(padded[BytesPerFelt-len(b):], b)
		out = append(out, padded...)
	}
	if len(out) > length {
		out = out[:length]
	}
	return out
}
