// Package booking implements the client-facing operations over the escrow
// contract: catalog and booking queries, the multi-step booking flows, and
// live contract event subscriptions.
package booking

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dindasrg/chain-hotel-bookings/pkg/blockchain"
	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/session"
)

// receiptPollCap bounds the backoff between receipt polls while waiting for
// a transaction to mine.
const receiptPollCap = 8 * time.Second

// Client exposes the booking operations. Reads go straight to the chain;
// writes additionally require a connected session to sign.
type Client struct {
	chain *blockchain.ChainClient
	sess  *session.Manager
	cfg   *config.Config
}

// NewClient builds a booking client over a chain client and wallet session.
func NewClient(chain *blockchain.ChainClient, sess *session.Manager, cfg *config.Config) *Client {
	return &Client{chain: chain, sess: sess, cfg: cfg}
}

// waitMined waits for the transaction to mine, bounded by the configured
// submit timeout.
func (c *Client) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if d := c.cfg.Timeouts.ChainSubmit; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return c.chain.WaitForTransaction(ctx, txHash, receiptPollCap)
}
