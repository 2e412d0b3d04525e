package rpc

import (
	"context"
	"strconv"

	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
)

// NetAPI implements the net_* namespace.
type NetAPI struct {
	provider *ethprovider.Provider
}

func NewNetAPI(provider *ethprovider.Provider) *NetAPI {
	return &NetAPI{provider: provider}
}

func (a *NetAPI) Version(ctx context.Context) (string, error) {
	id, err := a.provider.ChainID(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(id, 10), nil
}

// PeerCount always reports 0: the adapter has no peer-to-peer network, it
// fronts a single L2 RPC endpoint.
func (a *NetAPI) PeerCount(ctx context.Context) (string, error) {
	return "0x0", nil
}

// Listening always reports false, for the same reason PeerCount is always 0.
func (a *NetAPI) Listening(ctx context.Context) (bool, error) {
	return false, nil
}

// Health reports true as long as the provider answers requests at all; a
// failing dependency surfaces through its own method's error instead of
// through this check.
func (a *NetAPI) Health(ctx context.Context) (bool, error) {
	return true, nil
}
