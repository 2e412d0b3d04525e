// Package l2client holds typed read-only views of the EVM kernel and
// deployed account contracts on the L2, reached over JSON-RPC.
package l2client

import (
	"context"
	"strings"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IsNotFound reports whether err represents a contract-not-found or
// entrypoint-not-found condition on the L2. Both must be treated as an
// empty/zero read rather than propagated.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Contract not found") ||
		(strings.Contains(msg, "Entry point") && strings.Contains(msg, "not found in contract"))
}

// Client is a thin JSON-RPC client to the L2 node; each call gets a
// correlation id that appears in the adapter's own debug logs.
type Client struct {
	rpc    *rpc.Client
	logger log.Logger
}

func Dial(ctx context.Context, url string, logger log.Logger) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c, logger: logger.With("module", "l2client")}, nil
}

// Call issues a single L2 JSON-RPC call, logging a correlation id with the
// request and with any failure. The id is not sent to the L2 node.
func (c *Client) Call(ctx context.Context, result any, method string, args ...any) error {
	reqID := uuid.NewString()
	c.logger.Debug("l2 rpc call", "id", reqID, "method", method)
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		c.logger.Debug("l2 rpc call failed", "id", reqID, "method", method, "err", err)
		return errors.Wrapf(err, "l2 rpc %s", method)
	}
	return nil
}

// BatchCall issues a batch of L2 JSON-RPC calls in one round trip.
func (c *Client) BatchCall(ctx context.Context, batch []rpc.BatchElem) error {
	return c.rpc.BatchCallContext(ctx, batch)
}

func (c *Client) Close() { c.rpc.Close() }
