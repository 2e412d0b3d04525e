package rpc

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func uint256FromHash(h common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}
