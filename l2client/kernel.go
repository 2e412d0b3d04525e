package l2client

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/kkrt-labs/kakarot-rpc-go/codec"
)

// NativeTokenAddress is the L2's fixed fee-token contract address: a
// network-wide constant, not an environment-configured value.
var NativeTokenAddress = uint256.MustFromHex("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")

// KernelReader exposes typed read-only views of the EVM kernel contract,
// one method per kernel entrypoint.
type KernelReader struct {
	client         *Client
	kakarotAddress *uint256.Int
}

func NewKernelReader(client *Client, kakarotAddress *uint256.Int) *KernelReader {
	return &KernelReader{client: client, kakarotAddress: kakarotAddress}
}

// CallInput mirrors the kernel's eth_call/eth_estimate_gas parameter list.
type CallInput struct {
	Origin     *uint256.Int
	To         *uint256.Int // nil means contract creation
	Nonce      *uint256.Int
	GasLimit   uint64
	GasPrice   *uint256.Int
	Value      *uint256.Int
	Calldata   []byte
	AccessList []byte // opaque encoded access list, kernel-specific shape
}

// CallResult is the kernel's eth_call response: success==false signals an
// EVM revert, with ReturnData carrying the revert reason bytes.
type CallResult struct {
	GasUsed    uint64
	ReturnData []byte
	Success    bool
}

func (k *KernelReader) EthCall(ctx context.Context, in CallInput) (*CallResult, error) {
	var out CallResult
	if err := k.client.Call(ctx, &out, "kakarot_ethCall", k.kakarotAddress, in); err != nil {
		return nil, err
	}
	return &out, nil
}

// EstimateGasResult mirrors eth_estimate_gas's (success, return_data,
// required_gas) tuple.
type EstimateGasResult struct {
	Success     bool
	ReturnData  []byte
	RequiredGas uint64
}

func (k *KernelReader) EstimateGas(ctx context.Context, in CallInput) (*EstimateGasResult, error) {
	var out EstimateGasResult
	if err := k.client.Call(ctx, &out, "kakarot_estimateGas", k.kakarotAddress, in); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComputeChainID fetches the L2's native (unmasked) chain id, which the
// caller must mask to 32 bits before exposing it as eth_chainId.
func (k *KernelReader) ComputeChainID(ctx context.Context, out *uint64) error {
	return k.client.Call(ctx, out, "starknet_chainId")
}

// ProtocolNonce returns the L2 protocol-level nonce of address s, distinct
// from the deployed account contract's own stored nonce.
func (k *KernelReader) ProtocolNonce(ctx context.Context, s *uint256.Int) (*uint256.Int, error) {
	var out uint256.Int
	if err := k.client.Call(ctx, &out, "starknet_getNonce", "latest", s); err != nil {
		return nil, err
	}
	return &out, nil
}

// BlockNumber is the L2's own block height, used as a fallback when the
// index store has no headers yet.
func (k *KernelReader) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := k.client.Call(ctx, &n, "starknet_blockNumber"); err != nil {
		return 0, err
	}
	return n, nil
}

// BaseFee returns the current gas price oracle value for eth_gasPrice.
func (k *KernelReader) BaseFee(ctx context.Context) (*uint256.Int, error) {
	var out uint256.Int
	if err := k.client.Call(ctx, &out, "kakarot_getBaseFee", k.kakarotAddress); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComputeStarknetAddress mirrors the on-chain derivation for cross-checking
// against the off-chain one in package codec.
func (k *KernelReader) ComputeStarknetAddress(ctx context.Context, ethAddr *uint256.Int) (*uint256.Int, error) {
	var out uint256.Int
	if err := k.client.Call(ctx, &out, "kakarot_computeStarknetAddress", k.kakarotAddress, ethAddr); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddInvokeTransaction submits a built invoke to the L2, returning its
// native L2 transaction hash.
func (k *KernelReader) AddInvokeTransaction(ctx context.Context, inv codec.InvokeTransaction) (*uint256.Int, error) {
	var l2Hash uint256.Int
	if err := k.client.Call(ctx, &l2Hash, "starknet_addInvokeTransaction", inv); err != nil {
		return nil, err
	}
	return &l2Hash, nil
}

// AccountReader exposes the deployed-account contract at L2 address S.
type AccountReader struct {
	client *Client
}

func NewAccountReader(client *Client) *AccountReader { return &AccountReader{client: client} }

func (a *AccountReader) GetNonce(ctx context.Context, s *uint256.Int) (*uint256.Int, error) {
	var out uint256.Int
	if err := a.client.Call(ctx, &out, "kakarot_accountGetNonce", s); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bytecode returns the deployed account's packed bytecode felts and byte
// length.
func (a *AccountReader) Bytecode(ctx context.Context, s *uint256.Int) ([]*uint256.Int, int, error) {
	var out struct {
		Length int            `json:"length"`
		Felts  []*uint256.Int `json:"bytecode"`
	}
	if err := a.client.Call(ctx, &out, "kakarot_accountBytecode", s); err != nil {
		return nil, 0, err
	}
	return out.Felts, out.Length, nil
}

// Storage reads the (low, high) value pair at the given storage key,
// constructed by the caller via codec.SplitU256 over the requested slot.
func (a *AccountReader) Storage(ctx context.Context, s *uint256.Int, keyLow, keyHigh *uint256.Int) (codec.Felts, error) {
	var out struct {
		Low  *uint256.Int `json:"low"`
		High *uint256.Int `json:"high"`
	}
	if err := a.client.Call(ctx, &out, "kakarot_accountStorage", s, keyLow, keyHigh); err != nil {
		return codec.Felts{}, err
	}
	return codec.Felts{Low: out.Low, High: out.High}, nil
}

func (a *AccountReader) GetImplementation(ctx context.Context, s *uint256.Int) (*uint256.Int, error) {
	var out uint256.Int
	if err := a.client.Call(ctx, &out, "kakarot_accountGetImplementation", s); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountReader) IsInitialized(ctx context.Context, s *uint256.Int) (bool, error) {
	var out bool
	if err := a.client.Call(ctx, &out, "kakarot_accountIsInitialized", s); err != nil {
		return false, err
	}
	return out, nil
}

// TokenReader exposes the native fee token's ERC-20-like balance_of view.
type TokenReader struct {
	client  *Client
	address *uint256.Int
}

func NewTokenReader(client *Client, tokenAddress *uint256.Int) *TokenReader {
	return &TokenReader{client: client, address: tokenAddress}
}

func (t *TokenReader) BalanceOf(ctx context.Context, s *uint256.Int) (codec.Felts, error) {
	var out struct {
		Low  *uint256.Int `json:"low"`
		High *uint256.Int `json:"high"`
	}
	if err := t.client.Call(ctx, &out, "kakarot_tokenBalanceOf", t.address, s); err != nil {
		return codec.Felts{}, err
	}
	return codec.Felts{Low: out.Low, High: out.High}, nil
}
