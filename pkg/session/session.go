// Package session manages the wallet connection lifecycle: connecting,
// chain negotiation, reacting to wallet-side account and chain changes, and
// handing out single-use signers while connected.
package session

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/wallet"
)

// Status is the connection state of a Manager.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// connectFlight shares one in-progress Connect between concurrent callers.
type connectFlight struct {
	done chan struct{}
	err  error
}

// Manager owns the wallet session. All methods are safe for concurrent use.
//
// A connected session can be torn down from two sides: locally via Disconnect
// or Close, and remotely when the wallet revokes accounts or moves to another
// chain. Remote chain moves reset the session and notify the OnReset hook so
// the application can re-run Connect.
type Manager struct {
	provider wallet.Provider
	cfg      *config.Config

	mu      sync.Mutex
	status  Status
	account common.Address
	chainID *big.Int
	flight  *connectFlight
	cancels []func()

	onReset func()
}

// NewManager builds a disconnected Manager over the given provider. A nil
// provider is allowed for read-only use; Connect then always fails.
func NewManager(provider wallet.Provider, cfg *config.Config) *Manager {
	return &Manager{provider: provider, cfg: cfg}
}

// SetOnReset installs a hook invoked after the session was reset by a
// wallet-side chain change. The hook runs outside the Manager's lock.
func (m *Manager) SetOnReset(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReset = fn
}

// Connect establishes the session: requests accounts, negotiates the target
// chain, and subscribes to wallet change notifications. Concurrent calls
// share one attempt. Connecting an already connected session is a no-op.
// A Manager built without a provider stays read-only and reports
// WalletUnavailable here.
func (m *Manager) Connect(ctx context.Context) error {
	if m.provider == nil {
		return errs.New(errs.WalletUnavailable, "no wallet provider configured")
	}
	m.mu.Lock()
	if m.status == StatusConnected {
		m.mu.Unlock()
		return nil
	}
	if f := m.flight; f != nil {
		m.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &connectFlight{done: make(chan struct{})}
	m.flight = f
	m.status = StatusConnecting
	m.mu.Unlock()

	err := m.connect(ctx)

	m.mu.Lock()
	m.flight = nil
	if err != nil {
		m.status = StatusDisconnected
	}
	m.mu.Unlock()

	f.err = err
	close(f.done)
	return err
}

func (m *Manager) connect(ctx context.Context) error {
	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		if wallet.IsUserRejected(err) {
			return errs.Wrap(errs.UserRejected, err, "wallet connection rejected")
		}
		return errs.Wrap(errs.WalletUnavailable, err, "request accounts")
	}
	if len(accounts) == 0 {
		return errs.New(errs.WalletUnavailable, "wallet returned no accounts")
	}

	if err := EnsureTargetChain(ctx, m.provider, m.cfg.Chain); err != nil {
		return err
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return errs.Wrap(errs.ChainQueryFailed, err, "query active chain")
	}

	m.mu.Lock()
	m.account = accounts[0]
	m.chainID = chainID
	m.status = StatusConnected
	if len(m.cancels) == 0 {
		m.cancels = []func(){
			m.provider.OnAccountsChanged(m.handleAccountsChanged),
			m.provider.OnChainChanged(m.handleChainChanged),
		}
	}
	m.mu.Unlock()

	zap.L().Info("wallet connected",
		zap.String("account", accounts[0].Hex()),
		zap.String("chain_id", chainID.String()))
	return nil
}

// Disconnect tears the session down locally. It is idempotent and never
// touches the wallet.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.reset()
	m.mu.Unlock()
}

// reset clears session state. Caller holds m.mu.
func (m *Manager) reset() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	m.status = StatusDisconnected
	m.account = common.Address{}
	m.chainID = nil
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Account returns the active account, or the zero address when disconnected.
func (m *Manager) Account() common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account
}

// ChainID returns the session's chain id, or nil when disconnected.
func (m *Manager) ChainID() *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chainID == nil {
		return nil
	}
	return new(big.Int).Set(m.chainID)
}

// Signer returns fresh single-use transact opts for the connected account.
// It fails with SignerUnavailable when the session is not connected, without
// prompting the wallet.
func (m *Manager) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	m.mu.Lock()
	connected := m.status == StatusConnected
	m.mu.Unlock()
	if !connected {
		return nil, errs.New(errs.SignerUnavailable, "wallet session is not connected")
	}
	opts, err := m.provider.TransactOpts(ctx)
	if err != nil {
		if wallet.IsUserRejected(err) {
			return nil, errs.Wrap(errs.UserRejected, err, "signing rejected")
		}
		return nil, errs.Wrap(errs.SignerUnavailable, err, "obtain signer")
	}
	return opts, nil
}

func (m *Manager) handleAccountsChanged(accounts []common.Address) {
	m.mu.Lock()
	if m.status != StatusConnected {
		m.mu.Unlock()
		return
	}
	if len(accounts) == 0 {
		zap.L().Info("wallet revoked accounts, disconnecting")
		m.reset()
		m.mu.Unlock()
		return
	}
	if accounts[0] != m.account {
		zap.L().Info("active account changed",
			zap.String("from", m.account.Hex()),
			zap.String("to", accounts[0].Hex()))
		m.account = accounts[0]
	}
	m.mu.Unlock()
}

func (m *Manager) handleChainChanged(chainID *big.Int) {
	m.mu.Lock()
	if m.status != StatusConnected {
		m.mu.Unlock()
		return
	}
	if m.chainID != nil && chainID != nil && m.chainID.Cmp(chainID) == 0 {
		m.mu.Unlock()
		return
	}
	zap.L().Info("wallet moved to another chain, resetting session",
		zap.String("chain_id", chainID.String()))
	m.reset()
	hook := m.onReset
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// Close releases the session and its wallet registrations.
func (m *Manager) Close() {
	m.Disconnect()
}
