// Package blockchain provides the chain access layer for the hotel booking
// escrow: an Ethereum client wrapper, typed bindings for the InnChain escrow
// contract and its ERC-20 payment token, receipt waiting, fixed-point amount
// conversion, and revert-reason extraction.
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
)

// Backend is the chain access surface required by the bindings and helpers.
// *ethclient.Client satisfies it; tests substitute a scripted implementation.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ChainClient holds a connected backend and the contract addresses. Bindings
// are minted freshly by Escrow and Token on every call and must not be cached
// by callers across account or chain changes.
type ChainClient struct {
	backend Backend
	cfg     *config.Config
}

// Dial connects to the configured RPC endpoint and verifies it serves the
// configured chain.
func Dial(cfg *config.Config) (*ChainClient, error) {
	ctx := context.Background()
	if d := cfg.Timeouts.Dial; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	client, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		zap.L().Error("failed to dial rpc endpoint", zap.String("rpc", cfg.Chain.RPCURL), zap.Error(err))
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if chainID.Int64() != cfg.Chain.ChainID {
		client.Close()
		return nil, fmt.Errorf("endpoint %s serves chain %s, configured chain is %d",
			cfg.Chain.RPCURL, chainID, cfg.Chain.ChainID)
	}

	return &ChainClient{backend: client, cfg: cfg}, nil
}

// NewChainClient wraps an existing backend. Used by tests and by applications
// that manage their own client lifecycle.
func NewChainClient(backend Backend, cfg *config.Config) *ChainClient {
	return &ChainClient{backend: backend, cfg: cfg}
}

// Escrow returns a fresh binding for the booking escrow contract.
func (c *ChainClient) Escrow() (*Escrow, error) {
	return NewEscrow(c.cfg.EscrowAddress(), c.backend)
}

// Token returns a fresh binding for the payment token contract.
func (c *ChainClient) Token() (*Token, error) {
	return NewToken(c.cfg.TokenAddress(), c.backend)
}

// EscrowAddress returns the configured escrow contract address.
func (c *ChainClient) EscrowAddress() common.Address {
	return c.cfg.EscrowAddress()
}

// CallOpts builds bind.CallOpts carrying ctx, bounded by the configured read
// timeout when one is set. The returned cancel func is always non-nil.
func (c *ChainClient) CallOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	cancel := func() {}
	if d := c.cfg.Timeouts.ChainRead; d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	}
	return &bind.CallOpts{Context: ctx}, cancel
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until the receipt is available, the context is done, or an error occurs. If
// maxBackoff is non-zero, backoff will not exceed it. A transaction that mined
// with a failed status is reported as a ContractRevert.
func (c *ChainClient) WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := time.Second
	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, errs.Revert("", fmt.Errorf("transaction %s reverted on-chain", txHash))
			}
			zap.L().Debug("transaction mined",
				zap.String("tx", txHash.Hex()),
				zap.Uint64("block", receipt.BlockNumber.Uint64()))
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if maxBackoff == 0 || backoff < maxBackoff {
				backoff *= 2
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}

// Close releases the underlying connection when the backend owns one.
func (c *ChainClient) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}
