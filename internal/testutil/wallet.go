package testutil

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/wallet"
)

// FakeWallet is a scripted wallet.Provider. Zero value is unusable; build it
// with NewFakeWallet, then flip the Reject* switches or adjust KnownChains to
// script the scenario under test.
type FakeWallet struct {
	mu sync.Mutex

	key     *ecdsa.PrivateKey
	Account common.Address

	// ActiveChain is the chain the wallet currently reports.
	ActiveChain *big.Int
	// KnownChains lists chain ids SwitchChain will accept. A switch to any
	// other chain returns the chain-not-added code.
	KnownChains map[int64]bool

	RejectAccounts bool
	RejectSwitch   bool
	RejectAdd      bool
	RejectSign     bool
	// AddErr, when set, is returned by AddChain instead of succeeding.
	AddErr error

	SwitchCalls int
	AddCalls    int
	SignCalls   int

	accountHandlers wallet.Notifier[[]common.Address]
	chainHandlers   wallet.Notifier[*big.Int]
}

// NewFakeWallet returns a wallet on chainID with one freshly generated account.
func NewFakeWallet(chainID int64) *FakeWallet {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &FakeWallet{
		key:         key,
		Account:     crypto.PubkeyToAddress(key.PublicKey),
		ActiveChain: big.NewInt(chainID),
		KnownChains: map[int64]bool{chainID: true},
	}
}

func (w *FakeWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.RejectAccounts {
		return nil, &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "user rejected the request"}
	}
	return []common.Address{w.Account}, nil
}

func (w *FakeWallet) ChainID(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return new(big.Int).Set(w.ActiveChain), nil
}

func (w *FakeWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	w.mu.Lock()
	w.SwitchCalls++
	if w.RejectSwitch {
		w.mu.Unlock()
		return &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "user rejected chain switch"}
	}
	if !w.KnownChains[chainID.Int64()] {
		w.mu.Unlock()
		return &wallet.RPCError{Code: wallet.CodeChainNotAdded, Message: "unrecognized chain"}
	}
	w.ActiveChain = new(big.Int).Set(chainID)
	handlers := w.chainHandlers.Snapshot()
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(new(big.Int).Set(chainID))
	}
	return nil
}

func (w *FakeWallet) AddChain(ctx context.Context, chain config.Chain) error {
	w.mu.Lock()
	w.AddCalls++
	if w.RejectAdd {
		w.mu.Unlock()
		return &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "user rejected adding chain"}
	}
	if w.AddErr != nil {
		err := w.AddErr
		w.mu.Unlock()
		return err
	}
	w.KnownChains[chain.ChainID] = true
	w.ActiveChain = big.NewInt(chain.ChainID)
	handlers := w.chainHandlers.Snapshot()
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(big.NewInt(chain.ChainID))
	}
	return nil
}

func (w *FakeWallet) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.SignCalls++
	if w.RejectSign {
		return nil, &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "user rejected signing"}
	}
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, new(big.Int).Set(w.ActiveChain))
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func (w *FakeWallet) OnAccountsChanged(fn func([]common.Address)) (cancel func()) {
	w.mu.Lock()
	id := w.accountHandlers.Add(fn)
	w.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			w.accountHandlers.Remove(id)
			w.mu.Unlock()
		})
	}
}

func (w *FakeWallet) OnChainChanged(fn func(*big.Int)) (cancel func()) {
	w.mu.Lock()
	id := w.chainHandlers.Add(fn)
	w.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			w.chainHandlers.Remove(id)
			w.mu.Unlock()
		})
	}
}

// EmitAccountsChanged fires the wallet's account-change handlers.
func (w *FakeWallet) EmitAccountsChanged(accounts []common.Address) {
	w.mu.Lock()
	handlers := w.accountHandlers.Snapshot()
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(accounts)
	}
}

// EmitChainChanged updates the active chain and fires chain-change handlers.
func (w *FakeWallet) EmitChainChanged(chainID int64) {
	w.mu.Lock()
	w.ActiveChain = big.NewInt(chainID)
	handlers := w.chainHandlers.Snapshot()
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(big.NewInt(chainID))
	}
}

var _ wallet.Provider = (*FakeWallet)(nil)
