package l2client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"contract not found", errors.New("Contract not found"), true},
		{"entrypoint not found", errors.New("Entry point 0x1 not found in contract 0x2"), true},
		{"other provider error", errors.New("Block not found"), false},
		{"transport error", errors.New("connection refused"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsNotFound(tc.err))
		})
	}
}
