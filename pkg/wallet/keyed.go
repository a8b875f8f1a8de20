package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
)

// rpcNode is the slice of an RPC client the keyed wallet needs.
type rpcNode interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// dialNode is swapped out in tests.
var dialNode = func(rawurl string) (rpcNode, error) {
	client, err := ethclient.Dial(rawurl)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Keyed is a headless wallet Provider backed by a local ECDSA private key.
// It auto-approves account and signature requests; chain negotiation is
// answered from the RPC endpoint it is connected to, so a switch to a chain
// the endpoint does not serve reports CodeChainNotAdded and AddChain re-dials
// against the supplied chain parameters.
type Keyed struct {
	mu       sync.Mutex
	key      *ecdsa.PrivateKey
	address  common.Address
	node     rpcNode
	chainID  *big.Int
	accounts Notifier[[]common.Address]
	chains   Notifier[*big.Int]
}

// NewKeyed parses the hex-encoded private key, dials the RPC endpoint and
// records the endpoint's chain id as the wallet's active chain.
func NewKeyed(privateKeyHex, rpcURL string) (*Keyed, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	node, err := dialNode(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	chainID, err := node.ChainID(context.Background())
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}

	return &Keyed{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		node:    node,
		chainID: chainID,
	}, nil
}

// Address returns the wallet's account address.
func (w *Keyed) Address() common.Address {
	return w.address
}

// RequestAccounts implements Provider. A keyed wallet has nothing to prompt
// for and always grants its single account.
func (w *Keyed) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{w.address}, nil
}

// ChainID implements Provider.
func (w *Keyed) ChainID(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return new(big.Int).Set(w.chainID), nil
}

// SwitchChain implements Provider. The active chain is whatever the endpoint
// serves; asking for any other chain reports CodeChainNotAdded so the caller
// can follow up with AddChain carrying a usable RPC URL.
func (w *Keyed) SwitchChain(ctx context.Context, chainID *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chainID.Cmp(chainID) == 0 {
		return nil
	}
	return &RPCError{
		Code:    CodeChainNotAdded,
		Message: fmt.Sprintf("chain %s not served by the connected endpoint", chainID),
	}
}

// AddChain implements Provider. It dials the chain's RPC URL, verifies the
// endpoint really serves the declared chain id, and makes it the active
// connection. Registered chain-change handlers are notified.
func (w *Keyed) AddChain(ctx context.Context, chain config.Chain) error {
	node, err := dialNode(chain.RPCURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", chain.RPCURL, err)
	}

	reported, err := node.ChainID(ctx)
	if err != nil {
		node.Close()
		return fmt.Errorf("query chain id of %s: %w", chain.RPCURL, err)
	}
	if reported.Int64() != chain.ChainID {
		node.Close()
		return fmt.Errorf("endpoint %s serves chain %s, expected %d", chain.RPCURL, reported, chain.ChainID)
	}

	w.mu.Lock()
	if w.node != nil {
		w.node.Close()
	}
	w.node = node
	w.chainID = reported
	handlers := w.chains.Snapshot()
	w.mu.Unlock()

	zap.L().Info("keyed wallet switched chain",
		zap.Int64("chainID", chain.ChainID),
		zap.String("rpc", chain.RPCURL))

	for _, fn := range handlers {
		fn(new(big.Int).Set(reported))
	}
	return nil
}

// TransactOpts implements Provider. The transactor is bound to the active
// chain id at the time of the call.
func (w *Keyed) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	w.mu.Lock()
	chainID := new(big.Int).Set(w.chainID)
	w.mu.Unlock()

	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// OnAccountsChanged implements Provider. A keyed wallet never changes its
// account set on its own, but the registration contract still holds.
func (w *Keyed) OnAccountsChanged(fn func([]common.Address)) func() {
	w.mu.Lock()
	id := w.accounts.Add(fn)
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			w.accounts.Remove(id)
			w.mu.Unlock()
		})
	}
}

// OnChainChanged implements Provider.
func (w *Keyed) OnChainChanged(fn func(*big.Int)) func() {
	w.mu.Lock()
	id := w.chains.Add(fn)
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			w.chains.Remove(id)
			w.mu.Unlock()
		})
	}
}

// Close releases the RPC connection.
func (w *Keyed) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.node != nil {
		w.node.Close()
		w.node = nil
	}
}
