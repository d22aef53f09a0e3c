package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	endpoint  string
}

// NewClient walks the endpoint list in order and returns a client for the
// first endpoint that answers eth_chainId. Exhausting the list is fatal.
func NewClient(ctx context.Context, endpoints []string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one rpc endpoint is required")
	}

	var lastErr error
	for _, endpoint := range endpoints {
		rpcClient, err := rpc.DialContext(ctx, endpoint)
		if err != nil {
			logger.Warn("rpc dial failed", zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}

		client := &Client{
			rpcClient: rpcClient,
			ethClient: ethclient.NewClient(rpcClient),
			endpoint:  endpoint,
		}
		if _, err := client.ChainID(ctx); err != nil {
			logger.Warn("rpc probe failed", zap.String("endpoint", endpoint), zap.Error(err))
			rpcClient.Close()
			lastErr = err
			continue
		}

		logger.Info("rpc connected", zap.String("endpoint", endpoint))
		return client, nil
	}

	return nil, fmt.Errorf("no usable rpc endpoint: %w", lastErr)
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Endpoint returns the endpoint this client connected to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// FilterLogs returns logs in the given range for addresses and topic0
// filters. Multiple topic0 hashes form an OR filter at position 0.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	addresses []common.Address,
	topic0 []common.Hash,
) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.ethClient.FilterLogs(ctx, query)
}
