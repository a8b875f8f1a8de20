// Package wallet defines the boundary to the user's wallet: account requests,
// chain switch/add negotiation, transaction signing, and the two asynchronous
// notifications (account-list changes and chain-id changes) a wallet emits.
//
// The Provider interface mirrors the request surface of an injected browser
// wallet (EIP-1193); Keyed is a headless implementation backed by a local
// ECDSA private key that auto-approves every prompt.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
)

// EIP-1193 / EIP-3326 provider error codes.
const (
	// CodeUserRejected is returned when the user declines a wallet prompt.
	CodeUserRejected = 4001
	// CodeChainNotAdded is returned by wallet_switchEthereumChain when the
	// requested chain has not been added to the wallet.
	CodeChainNotAdded = 4902
)

// RPCError is a provider-level error with a wallet error code. Every wallet
// implementation reports user rejections and unknown chains through it, so
// that classification never has to inspect loosely-shaped error values beyond
// this one type.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// IsUserRejected reports whether err is a wallet user-rejection (code 4001).
func IsUserRejected(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeUserRejected
}

// IsChainNotAdded reports whether err is the distinguished "chain not added"
// response (code 4902) to a switch-chain request.
func IsChainNotAdded(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeChainNotAdded
}

// Provider is the wallet seen by the rest of the SDK.
//
// RequestAccounts and TransactOpts are user-gated: they may suspend for as
// long as the user takes to respond and must return an RPCError with
// CodeUserRejected when declined. SwitchChain must return an RPCError with
// CodeChainNotAdded when the wallet does not know the chain, so the
// negotiator can follow up with AddChain.
type Provider interface {
	// RequestAccounts asks the wallet for its accounts, prompting the user
	// when the wallet is not yet authorized for this client.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// ChainID returns the wallet's currently active chain.
	ChainID(ctx context.Context) (*big.Int, error)

	// SwitchChain asks the wallet to activate the given chain.
	SwitchChain(ctx context.Context, chainID *big.Int) error

	// AddChain asks the wallet to add (and activate) the given chain.
	AddChain(ctx context.Context, chain config.Chain) error

	// TransactOpts returns a transactor bound to the wallet's active account
	// and chain. The returned opts are a single-use signing capability: they
	// must be requested freshly for every write call and never reused across
	// account or chain changes.
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)

	// OnAccountsChanged registers a handler for account-list changes. An
	// empty list means the wallet revoked access. The returned cancel func
	// releases the registration and is safe to call more than once.
	OnAccountsChanged(fn func([]common.Address)) (cancel func())

	// OnChainChanged registers a handler for chain-id changes. The returned
	// cancel func releases the registration and is safe to call more than
	// once.
	OnChainChanged(fn func(*big.Int)) (cancel func())
}

// Notifier is a minimal registry for wallet notification handlers shared by
// Provider implementations. It is not synchronized; callers guard it with
// their own lock.
type Notifier[T any] struct {
	next     int
	handlers map[int]func(T)
}

// Add registers a handler and returns its id for Remove.
func (n *Notifier[T]) Add(fn func(T)) int {
	if n.handlers == nil {
		n.handlers = make(map[int]func(T))
	}
	id := n.next
	n.next++
	n.handlers[id] = fn
	return id
}

// Remove drops the handler with the given id. Unknown ids are ignored.
func (n *Notifier[T]) Remove(id int) {
	delete(n.handlers, id)
}

// Snapshot copies the registered handlers so they can be invoked outside
// the caller's lock.
func (n *Notifier[T]) Snapshot() []func(T) {
	out := make([]func(T), 0, len(n.handlers))
	for _, fn := range n.handlers {
		out = append(out, fn)
	}
	return out
}
