package rpc

import (
	"context"

	"github.com/kkrt-labs/kakarot-rpc-go/config"
)

// KakarotAPI implements the kakarot_* namespace: a read-only snapshot of
// the adapter's own configuration, for operators and client SDKs to
// introspect without parsing environment variables directly.
type KakarotAPI struct {
	cfg *config.Config
}

func NewKakarotAPI(cfg *config.Config) *KakarotAPI {
	return &KakarotAPI{cfg: cfg}
}

// GetConfig implements kakarot_getConfig. No pre-EIP-155 transaction hash
// whitelist is configured by this adapter, so that field is always empty;
// the Snapshot shape still carries it so client SDKs see a stable object.
func (a *KakarotAPI) GetConfig(ctx context.Context) (config.Constant, error) {
	return a.cfg.Snapshot(nil), nil
}
