package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// PolygonChainID is the chain id constant from §6 ("chain id = 137").
const PolygonChainID = 137

// Client wraps go-ethereum's client with the subset of the RPC surface
// consumed by the world state (§6): call-contract for view calls, block
// and log subscriptions for the event ingester and block loop, and gas
// price sampling for the evaluator's bump policy.
type Client struct {
	eth     *ethclient.Client
	rpc     *rpc.Client
	chainID *big.Int
}

// Dial connects over either WebSocket or IPC, per the use_ipc
// configuration option (§6). go-ethereum's rpc.DialContext dispatches
// on the URL scheme transparently for both transports.
func Dial(ctx context.Context, url string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("ethereum: dial %s: %w", url, err)
	}
	ethClient := ethclient.NewClient(rpcClient)

	chainCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	chainID, err := ethClient.ChainID(chainCtx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("ethereum: chain id: %w", err)
	}

	return &Client{eth: ethClient, rpc: rpcClient, chainID: chainID}, nil
}

// Close closes the underlying transport.
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainID returns the chain id reported by the node at dial time.
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// RPC exposes the raw *rpc.Client for the batched view-call client,
// which needs BatchCallContext directly.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// CallContract executes a single contract view call against the latest
// block.
func (c *Client) CallContract(ctx context.Context, msg goethereum.CallMsg) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, nil)
}

// BlockNumber returns the current head block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// SuggestGasPrice samples the node's current gas price, the input to the
// evaluator's gas-bump policy (§4.5).
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.eth.SuggestGasPrice(ctx)
}

// EstimateGas estimates gas for a transaction, used when the evaluator
// is not configured with a constant gas estimate (§4.5).
func (c *Client) EstimateGas(ctx context.Context, msg goethereum.CallMsg) (uint64, error) {
	return c.eth.EstimateGas(ctx, msg)
}

// SubscribeNewHead subscribes to new block headers — the block loop's
// driving signal (§4.5, §6).
func (c *Client) SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (goethereum.Subscription, error) {
	return c.eth.SubscribeNewHead(ctx, ch)
}

// SubscribeFilterLogs subscribes to a log stream filtered by address and
// topic — the event ingester's input (§4.2).
func (c *Client) SubscribeFilterLogs(ctx context.Context, q goethereum.FilterQuery, ch chan<- types.Log) (goethereum.Subscription, error) {
	return c.eth.SubscribeFilterLogs(ctx, q, ch)
}

// ZeroAddress is the conventional "not found" sentinel returned by
// factory getPair/getPool calls.
var ZeroAddress = common.HexToAddress("0x0000000000000000000000000000000000000000")
